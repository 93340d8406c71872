package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/varpool/pool/alloc"
)

// testScriptPath returns the path to a script under testdata.
func testScriptPath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("test script not found: %s", path)
	}
	return path
}

// resetFlags restores every flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut, logFile = false, false, false, ""
	runStrategy = "first"
	runPoolSize = alloc.DefaultConfig.PoolSize
	runMaxVars = alloc.DefaultConfig.MaxVariables
	runMaxName = alloc.DefaultConfig.MaxNameLength
	runBacking = "heap"
	runEncoding = "utf8"
	runVerify, runFailFast, runShowContents = false, false, false
}

// captureOutput captures stdout and stderr while running a function.
func captureOutput(t *testing.T, fn func() error) (stdout, stderr string, err error) {
	t.Helper()

	origStdout, origStderr := os.Stdout, os.Stderr

	outR, outW, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	errR, errW, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}

	os.Stdout, os.Stderr = outW, errW

	// Drain both pipes while fn runs so large output cannot block it.
	var outBuf, errBuf bytes.Buffer
	done := make(chan struct{}, 2)
	go func() { _, _ = io.Copy(&outBuf, outR); done <- struct{}{} }()
	go func() { _, _ = io.Copy(&errBuf, errR); done <- struct{}{} }()

	fnErr := fn()

	outW.Close()
	errW.Close()
	<-done
	<-done
	os.Stdout, os.Stderr = origStdout, origStderr

	return outBuf.String(), errBuf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
