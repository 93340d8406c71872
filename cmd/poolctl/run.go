package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/varpool/internal/logger"
	"github.com/joshuapare/varpool/internal/script"
	"github.com/joshuapare/varpool/pool"
	"github.com/joshuapare/varpool/pool/alloc"
	"github.com/joshuapare/varpool/pool/placement"
	"github.com/joshuapare/varpool/pool/printer"
)

var (
	runStrategy     string
	runPoolSize     int
	runMaxVars      int
	runMaxName      int
	runBacking      string
	runEncoding     string
	runVerify       bool
	runFailFast     bool
	runShowContents bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVarP(&runStrategy, "strategy", "s", "first", "Placement strategy: first, best, worst (or 0, 1, 2)")
	cmd.Flags().IntVar(&runPoolSize, "pool-size", alloc.DefaultConfig.PoolSize, "Pool capacity in bytes")
	cmd.Flags().IntVar(&runMaxVars, "max-vars", alloc.DefaultConfig.MaxVariables, "Maximum number of live variables")
	cmd.Flags().IntVar(&runMaxName, "max-name", alloc.DefaultConfig.MaxNameLength, "Maximum variable name length in bytes")
	cmd.Flags().StringVar(&runBacking, "backing", "heap", "Pool memory: heap or mmap")
	cmd.Flags().StringVar(&runEncoding, "encoding", "utf8", "Script encoding: utf8 or latin1")
	cmd.Flags().BoolVar(&runVerify, "verify", false, "Check every invariant after each command and stop on a violation")
	cmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "Stop at the first failing line")
	cmd.Flags().BoolVar(&runShowContents, "show-contents", false, "Include a byte preview of each variable in PRINT")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script> [strategy]",
		Short: "Execute an allocation script",
		Long: `The run command executes a script of ALLOC, REALLOC, FREE and PRINT
commands against a fresh pool, then reports any variables still allocated.

A failing line is reported with its line number and the script continues,
unless --fail-fast is given. The optional second argument overrides
--strategy and accepts the same values.

Example:
  poolctl run demo.txt
  poolctl run demo.txt best
  poolctl run demo.txt --strategy worst --pool-size 4096
  poolctl run demo.txt --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

func runRun(args []string) error {
	cfg, err := runConfig(args)
	if err != nil {
		return err
	}
	enc, err := script.ParseEncoding(runEncoding)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	a, err := alloc.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create allocator: %w", err)
	}
	defer a.Close()

	printVerbose("Script: %s\n", args[0])
	printVerbose("Pool: %d bytes (%s), %d variables, %d-byte names\n",
		cfg.PoolSize, cfg.Backing, cfg.MaxVariables, cfg.MaxNameLength)
	if !jsonOut {
		printInfo("Strategy: %s\n\n", cfg.Strategy)
	}

	popts := printer.DefaultOptions()
	popts.ShowContents = runShowContents
	if jsonOut {
		popts.Format = printer.FormatJSON
	}
	r := script.NewRunner(a, os.Stdout, os.Stderr, script.Options{
		FailFast: runFailFast,
		Quiet:    quiet,
		Printer:  popts,
		Logger:   logger.L,
	})

	results, runErr := r.Run(script.NewScanner(f, enc))
	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}
	logger.Info("script finished", "script", args[0], "lines", len(results), "failed", failed)

	if err := r.ReportLeaks(); err != nil {
		return err
	}
	printVerbose("%d commands, %d failed\n", len(results), failed)

	var le *script.LineError
	if errors.As(runErr, &le) {
		return fmt.Errorf("stopped: %w", le)
	}
	return runErr
}

// runConfig builds the allocator config from flags and the optional
// strategy argument.
func runConfig(args []string) (alloc.Config, error) {
	cfg := alloc.DefaultConfig
	cfg.PoolSize = runPoolSize
	cfg.MaxVariables = runMaxVars
	cfg.MaxNameLength = runMaxName
	cfg.Verify = runVerify
	if logFile != "" || verbose {
		cfg.Logger = logger.L
	}

	name := runStrategy
	if len(args) == 2 {
		name = args[1]
	}
	s, err := placement.ParseStrategy(name)
	if err != nil {
		printError("%v\n", err)
		return cfg, fmt.Errorf("invalid strategy %q", name)
	}
	cfg.Strategy = s

	b, err := pool.ParseBacking(runBacking)
	if err != nil {
		return cfg, err
	}
	cfg.Backing = b

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
