package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/varpool/pool/placement"
)

func init() {
	rootCmd.AddCommand(newStrategiesCmd())
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List placement strategies",
		Long: `The strategies command lists the placement strategies accepted by
"poolctl run --strategy" together with their numeric codes.

Example:
  poolctl strategies
  poolctl strategies --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStrategies()
		},
	}
}

type strategyInfo struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
	Rule string `json:"rule"`
}

func strategyList() []strategyInfo {
	rules := map[placement.Strategy][2]string{
		placement.FirstFit: {"first", "lowest-address free segment that is large enough"},
		placement.BestFit:  {"best", "smallest sufficient free segment, lowest address on ties"},
		placement.WorstFit: {"worst", "largest sufficient free segment, lowest address on ties"},
	}
	out := make([]strategyInfo, 0, len(placement.All))
	for _, s := range placement.All {
		out = append(out, strategyInfo{
			Code: int(s),
			Name: s.String(),
			Flag: rules[s][0],
			Rule: rules[s][1],
		})
	}
	return out
}

func runStrategies() error {
	list := strategyList()
	if jsonOut {
		return printJSON(list)
	}
	for _, s := range list {
		printInfo("%s  %-10s %-6s %s\n", strconv.Itoa(s.Code), s.Name, s.Flag, s.Rule)
	}
	return nil
}
