package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name           string
		script         string
		strategyArg    string
		setup          func()
		wantErr        bool
		wantStdout     []string
		wantStderr     []string
		wantNotContain []string
	}{
		{
			name:   "basic walk-through",
			script: "basic.txt",
			wantStdout: []string{
				"Strategy: First-fit",
				"ALLOC: variable 'a' allocated with 100 bytes",
				"REALLOC: variable 'a' resized from 100 to 40 bytes",
				"REALLOC: variable 'a' expanded from 40 to 100 bytes",
				"FREE: variable 'b' released",
				"ALLOC: variable 'd' allocated with 150 bytes",
				"=== Memory State (First-fit) ===",
				"No memory leaks detected.",
			},
			wantNotContain: []string{"[LEAK]"},
		},
		{
			name:       "leaks reported",
			script:     "leaks.txt",
			wantStdout: []string{"[LEAK] keep: 64 bytes at address 0"},
			wantNotContain: []string{
				"[LEAK] tmp",
				"No memory leaks detected.",
			},
		},
		{
			name:   "errors continue",
			script: "errors.txt",
			wantStdout: []string{
				"REALLOC: variable 'a' expanded from 10 to 30 bytes",
				"FREE: variable 'a' released",
			},
			wantStderr: []string{
				"error on line 2",
				"error on line 3",
				"error on line 4",
				"error on line 5",
				"variable already exists",
				"variable does not exist",
				"unknown command",
			},
		},
		{
			name:       "first fit",
			script:     "fit.txt",
			wantStdout: []string{"[LEAK] n: 100 bytes at address 0"},
		},
		{
			name:        "best fit from argument",
			script:      "fit.txt",
			strategyArg: "1",
			wantStdout:  []string{"Strategy: Best-fit", "[LEAK] n: 100 bytes at address 400"},
		},
		{
			name:       "worst fit from flag",
			script:     "fit.txt",
			setup:      func() { runStrategy = "worst" },
			wantStdout: []string{"Strategy: Worst-fit", "[LEAK] n: 100 bytes at address 620"},
		},
		{
			name:    "fail fast",
			script:  "errors.txt",
			setup:   func() { runFailFast = true },
			wantErr: true,
			wantNotContain: []string{
				"FREE: variable 'a' released",
			},
		},
		{
			name:    "invalid strategy",
			script:  "basic.txt",
			setup:   func() { runStrategy = "random" },
			wantErr: true,
		},
		{
			name:    "invalid pool size",
			script:  "basic.txt",
			setup:   func() { runPoolSize = 0 },
			wantErr: true,
		},
		{
			name:       "pool too small",
			script:     "leaks.txt",
			setup:      func() { runPoolSize = 70 },
			wantStdout: []string{"[LEAK] keep: 64 bytes at address 0"},
			wantStderr: []string{"error on line 2", "not enough memory"},
		},
		{
			name:       "latin1 script",
			script:     "latin1.txt",
			setup:      func() { runEncoding = "latin1" },
			wantStdout: []string{"ALLOC: variable 'café' allocated with 10 bytes"},
		},
		{
			name:       "quiet keeps report",
			script:     "leaks.txt",
			setup:      func() { quiet = true },
			wantStdout: []string{"[LEAK] keep"},
			wantNotContain: []string{
				"ALLOC:",
				"Strategy:",
			},
		},
		{
			name:       "mmap backing",
			script:     "basic.txt",
			setup:      func() { runBacking = "mmap"; runVerify = true },
			wantStdout: []string{"No memory leaks detected."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			if tt.setup != nil {
				tt.setup()
			}

			args := []string{testScriptPath(t, tt.script)}
			if tt.strategyArg != "" {
				args = append(args, tt.strategyArg)
			}

			stdout, stderr, err := captureOutput(t, func() error {
				return runRun(args)
			})

			if (err != nil) != tt.wantErr {
				t.Fatalf("runRun() error = %v, wantErr %v\nStdout: %s\nStderr: %s", err, tt.wantErr, stdout, stderr)
			}

			assertContains(t, stdout, tt.wantStdout)
			assertContains(t, stderr, tt.wantStderr)
			assertNotContains(t, stdout, tt.wantNotContain)
		})
	}
}

func TestRunCommand_FailFastLine(t *testing.T) {
	resetFlags()
	runFailFast = true

	_, _, err := captureOutput(t, func() error {
		return runRun([]string{testScriptPath(t, "errors.txt")})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error on line 2")
}

func TestRunCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true

	stdout, _, err := captureOutput(t, func() error {
		return runRun([]string{testScriptPath(t, "leaks.txt")})
	})
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(stdout))
	var docs []map[string]any
	for dec.More() {
		var doc map[string]any
		require.NoError(t, dec.Decode(&doc))
		docs = append(docs, doc)
	}
	// three result lines, then the leak report
	require.Len(t, docs, 4)
	assert.Equal(t, "ALLOC keep 64", docs[0]["command"])
	leaks, ok := docs[3]["leaks"].([]any)
	require.True(t, ok)
	assert.Len(t, leaks, 1)
}

func TestRunCommand_LogFile(t *testing.T) {
	resetFlags()
	path := filepath.Join(t.TempDir(), "poolctl.log")
	logFile = path
	require.NoError(t, initLogging(nil, nil))

	_, _, err := captureOutput(t, func() error {
		return runRun([]string{testScriptPath(t, "leaks.txt")})
	})
	require.NoError(t, err)

	// re-init with logging off closes the file
	resetFlags()
	require.NoError(t, initLogging(nil, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"allocated"`)
	assert.Contains(t, string(data), `"msg":"script finished"`)
}

func TestRunCommand_MissingScript(t *testing.T) {
	resetFlags()
	_, _, err := captureOutput(t, func() error {
		return runRun([]string{filepath.Join(t.TempDir(), "nope.txt")})
	})
	assert.Error(t, err)
}
