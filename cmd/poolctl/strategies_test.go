package main

import (
	"testing"
)

func TestStrategiesCommand(t *testing.T) {
	tests := []struct {
		name        string
		json        bool
		wantContain []string
	}{
		{
			name:        "text",
			wantContain: []string{"0  First-fit", "1  Best-fit", "2  Worst-fit", "worst"},
		},
		{
			name:        "json",
			json:        true,
			wantContain: []string{`"name": "Best-fit"`, `"flag": "best"`, `"code": 2`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.json

			output, _, err := captureOutput(t, runStrategies)
			if err != nil {
				t.Fatalf("runStrategies() error = %v", err)
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}
