package runner_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// binaryPath builds the anymacro binary and returns its path.
func binaryPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "anymacro")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}

	cmd := exec.CommandContext(context.Background(), "go", "build", "-o", bin, "../../cmd/anymacro")
	cmd.Dir = filepath.Join(projectRoot(t), "internal", "runner")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, out)
	}
	return bin
}

func projectRoot(t *testing.T) string {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..")
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("running binary: %v", err)
	}
	return exitErr.ExitCode()
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIntegrationProcess(t *testing.T) {
	bin := binaryPath(t)
	dir := t.TempDir()
	in := writeInput(t, dir, "in.txt", "#define GREETING hello\nGREETING world\n#ifdef GREETING\nyes\n#else\nno\n#endif\n")
	out := filepath.Join(dir, "out.txt")

	cmd := exec.CommandContext(context.Background(), bin, in, out)
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("run: %v\n%s", err, output)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello world\nyes\n" {
		t.Errorf("output: got %q", string(data))
	}
}

func TestIntegrationFlagsAfterArgs(t *testing.T) {
	bin := binaryPath(t)
	dir := t.TempDir()
	in := writeInput(t, dir, "in.txt", "#ifdef RELEASE\nrelease NAME\n#endif\n")
	out := filepath.Join(dir, "out.txt")

	cmd := exec.CommandContext(context.Background(), bin, in, out, "-D", "RELEASE", "-D", "NAME=v1", "--debug")
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("run: %v\n%s", err, output)
	}
	if !strings.Contains(string(output), "debug: ") {
		t.Errorf("expected debug output, got %q", output)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "release v1\n" {
		t.Errorf("output: got %q", string(data))
	}
}

func TestIntegrationDiff(t *testing.T) {
	bin := binaryPath(t)
	dir := t.TempDir()
	in := writeInput(t, dir, "in.txt", "#define A 1\nA\n")

	cmd := exec.CommandContext(context.Background(), bin, "-diff", in, filepath.Join(dir, "out.txt"))
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	for _, want := range []string{"-#define A 1\n", "-A\n", "+1\n"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("diff missing %q: %s", want, out)
		}
	}
}

func TestIntegrationVersion(t *testing.T) {
	bin := binaryPath(t)

	for _, flag := range []string{"-v", "-version", "--version"} {
		cmd := exec.CommandContext(context.Background(), bin, flag)
		out, err := cmd.Output()
		if err != nil {
			t.Fatalf("%s: %v", flag, err)
		}
		if !strings.HasPrefix(string(out), "anymacro ") {
			t.Errorf("%s: got %q", flag, string(out))
		}
	}
}

func TestIntegrationExitCodes(t *testing.T) {
	bin := binaryPath(t)
	dir := t.TempDir()
	good := writeInput(t, dir, "good.txt", "x\n")
	dup := writeInput(t, dir, "dup.txt", "#define A\n#define A\n")
	imp := writeInput(t, dir, "imp.txt", "#import nowhere.txt\n")
	out := filepath.Join(dir, "out.txt")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"success", []string{good, out}, 0},
		{"no arguments", nil, 1},
		{"one argument", []string{good}, 1},
		{"three arguments", []string{good, out, out}, 1},
		{"missing input", []string{filepath.Join(dir, "nope.txt"), out}, 1},
		{"missing import", []string{imp, out}, 1},
		{"duplicate define", []string{dup, out}, 2},
		{"bad config", []string{"-config", filepath.Join(dir, "none.yml"), good, out}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.CommandContext(context.Background(), bin, tt.args...)
			cmd.Dir = dir
			if got := exitCode(t, cmd.Run()); got != tt.want {
				t.Errorf("exit code: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIntegrationDiscoveredConfig(t *testing.T) {
	bin := binaryPath(t)
	dir := t.TempDir()
	writeInput(t, dir, "anymacro.yml", "preprocessor:\n  defines:\n    TARGET: prod\n")
	in := writeInput(t, dir, "in.txt", "#if TARGET == prod\ndeploy TARGET\n#endif\n")
	out := filepath.Join(dir, "out.txt")

	cmd := exec.CommandContext(context.Background(), bin, in, out)
	cmd.Dir = dir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("run: %v\n%s", err, output)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "deploy prod\n" {
		t.Errorf("output: got %q", string(data))
	}
}
