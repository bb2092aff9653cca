// Package runner orchestrates the config -> engine -> output pipeline.
package runner

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/donaldgifford/anymacro/internal/config"
	"github.com/donaldgifford/anymacro/internal/cond"
	"github.com/donaldgifford/anymacro/internal/engine"
	"github.com/donaldgifford/anymacro/internal/output"
	"github.com/donaldgifford/anymacro/internal/source"
	"github.com/donaldgifford/anymacro/pkg/diff"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitUsage = 1
	ExitError = 2
)

// Options configures the runner behavior.
type Options struct {
	Input       string
	Output      string
	Debug       bool
	ConfigPath  string
	Defines     []string // NAME or NAME=VALUE
	IncludeDirs []string
	Diff        bool
	Stdout      io.Writer
	Stderr      io.Writer
}

// Run preprocesses opts.Input into opts.Output and returns an exit code.
func Run(opts *Options) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	if opts.Input == "" || opts.Output == "" {
		writeErr(opts.Stderr, "anymacro: expected <input-file> <output-file>\n")
		return ExitUsage
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		writeErr(opts.Stderr, "anymacro: %v\n", err)
		return ExitError
	}

	defines, err := mergeDefines(cfg.Preprocessor.Defines, opts.Defines)
	if err != nil {
		writeErr(opts.Stderr, "anymacro: %v\n", err)
		return ExitUsage
	}

	if code := checkPaths(opts); code != ExitOK {
		return code
	}

	sink, err := output.Create(opts.Output)
	if err != nil {
		writeErr(opts.Stderr, "anymacro: %v\n", err)
		return ExitError
	}

	e := engine.New(sink, engineOptions(opts, cfg))
	for _, name := range sortedNames(defines) {
		if err := e.Define(name, defines[name]); err != nil {
			sink.Close()
			writeErr(opts.Stderr, "anymacro: %v\n", err)
			return ExitError
		}
	}

	runErr := e.Run(opts.Input)
	if err := sink.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("closing output %s: %w", opts.Output, err)
	}
	if runErr != nil {
		return report(opts.Stderr, runErr)
	}

	if opts.Diff {
		return printDiff(opts)
	}
	return ExitOK
}

// checkPaths rejects a missing input and an output that would overwrite it.
// It runs before the output is truncated.
func checkPaths(opts *Options) int {
	if _, err := os.Stat(opts.Input); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeErr(opts.Stderr, "anymacro: input file %s does not exist\n", opts.Input)
			return ExitUsage
		}
		writeErr(opts.Stderr, "anymacro: %v\n", err)
		return ExitError
	}

	in, inErr := filepath.Abs(opts.Input)
	out, outErr := filepath.Abs(opts.Output)
	if inErr == nil && outErr == nil && in == out {
		writeErr(opts.Stderr, "anymacro: output file %s is the input file\n", opts.Output)
		return ExitUsage
	}
	return ExitOK
}

func engineOptions(opts *Options, cfg *config.Config) engine.Options {
	p := cfg.Preprocessor
	mode, _ := cond.ParseMode(p.Conditionals) // validated by config.Load

	eo := engine.Options{
		IncludeDirs:      append(slices.Clone(p.IncludeDirs), opts.IncludeDirs...),
		MaxPasses:        p.MaxPasses,
		Conditionals:     mode,
		WarnUnterminated: p.WarnUnterminated,
		Warn:             opts.Stderr,
	}
	if opts.Debug {
		eo.Log = log.New(opts.Stderr, "debug: ", 0)
	}
	return eo
}

// mergeDefines overlays command line NAME[=VALUE] definitions on the
// configured ones. A definition without a value gets "1".
func mergeDefines(configured map[string]string, flags []string) (map[string]string, error) {
	out := make(map[string]string, len(configured)+len(flags))
	for name, value := range configured {
		out[name] = value
	}
	for _, f := range flags {
		name, value, found := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("invalid define %q: want NAME or NAME=VALUE", f)
		}
		if !found {
			value = "1"
		}
		out[name] = value
	}
	return out, nil
}

func sortedNames(m map[string]string) []string {
	names := maps.Keys(m)
	slices.Sort(names)
	return names
}

// report prints a processing error and the line it occurred on, and maps
// it to an exit code.
func report(w io.Writer, err error) int {
	writeErr(w, "anymacro: %v\n", err)
	var le *engine.LineError
	if errors.As(err, &le) && le.Text != "" {
		writeErr(w, "  %s\n", le.Text)
	}
	if errors.Is(err, engine.ErrMissingFile) {
		return ExitUsage
	}
	return ExitError
}

func printDiff(opts *Options) int {
	input, err := source.ReadFile(opts.Input)
	if err != nil {
		writeErr(opts.Stderr, "anymacro: %v\n", err)
		return ExitError
	}
	result, err := os.ReadFile(opts.Output)
	if err != nil {
		writeErr(opts.Stderr, "anymacro: %v\n", err)
		return ExitError
	}
	writeOut(opts.Stdout, diff.Unified(opts.Input, opts.Output, string(input), string(result)))
	return ExitOK
}

// writeOut writes to stdout.
func writeOut(w io.Writer, s string) {
	fmt.Fprint(w, s)
}

// writeErr formats and writes to stderr.
func writeErr(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
