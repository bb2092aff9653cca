// Package testutil provides shared test helpers for golden file testing.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/donaldgifford/anymacro/pkg/diff"
)

// Update is a flag that, when set, regenerates golden files from current output.
// Usage: go test ./... -update
var Update = flag.Bool("update", false, "update golden files")

// Golden file names inside each case directory.
const (
	InputFile    = "input.txt"
	ExpectedFile = "expected.txt"
	// ErrorFile, when present, holds a substring of the error the case
	// must fail with. Output written before the failure is still compared.
	ErrorFile = "error.txt"
)

// ProcessFunc preprocesses the file at inputPath and returns its output.
// Imports in the input resolve relative to the case directory.
type ProcessFunc func(inputPath string) (string, error)

// RunGolden runs a single golden file test in the given directory.
// It processes input.txt with processFn and compares against expected.txt.
func RunGolden(t *testing.T, dir string, processFn ProcessFunc) {
	t.Helper()

	inputPath := filepath.Join(dir, InputFile)
	expectedPath := filepath.Join(dir, ExpectedFile)

	actual, err := processFn(inputPath)
	checkError(t, dir, err)

	if *Update {
		if err := os.WriteFile(expectedPath, []byte(actual), 0o644); err != nil {
			t.Fatalf("failed to update golden file %s: %v", expectedPath, err)
		}
		t.Logf("updated golden file: %s", expectedPath)
		return
	}

	expectedBytes, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", expectedPath, err)
	}

	if d := diff.Unified(ExpectedFile, "actual", string(expectedBytes), actual); d != "" {
		t.Errorf("output mismatch for %s:\n%s", dir, d)
	}
}

// checkError compares err with the case's error.txt, if any.
func checkError(t *testing.T, dir string, err error) {
	t.Helper()

	want, readErr := os.ReadFile(filepath.Join(dir, ErrorFile))
	if readErr != nil {
		if !os.IsNotExist(readErr) {
			t.Fatalf("failed to read %s: %v", ErrorFile, readErr)
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}

	wantMsg := strings.TrimSpace(string(want))
	switch {
	case err == nil:
		t.Errorf("expected error containing %q, got nil", wantMsg)
	case !strings.Contains(err.Error(), wantMsg):
		t.Errorf("error %q does not contain %q", err, wantMsg)
	}
}

// RunGoldenDir walks all subdirectories under testdataDir and runs
// RunGolden for each as a subtest.
func RunGoldenDir(t *testing.T, testdataDir string, processFn ProcessFunc) {
	t.Helper()

	entries, err := os.ReadDir(testdataDir)
	if err != nil {
		t.Fatalf("failed to read testdata dir %s: %v", testdataDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		t.Run(entry.Name(), func(t *testing.T) {
			dir := filepath.Join(testdataDir, entry.Name())
			RunGolden(t, dir, processFn)
		})
	}
}
