// Package main is the entry point for anymacro.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/donaldgifford/anymacro/internal/runner"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// listFlag collects every value of a repeatable flag.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var (
		debug       bool
		showVersion bool
		defines     listFlag
		includeDirs listFlag
	)
	flag.BoolVar(&debug, "d", false, "print debug output to stderr")
	flag.BoolVar(&debug, "debug", false, "print debug output to stderr")
	flag.BoolVar(&showVersion, "v", false, "print version and exit")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file")
	diffFlag := flag.Bool("diff", false, "print unified diff of input and output")
	flag.Var(&defines, "D", "predefine `NAME[=VALUE]` (repeatable)")
	flag.Var(&includeDirs, "I", "add import search `DIR` (repeatable)")

	flag.Usage = usage
	args := parseInterspersed(flag.CommandLine, os.Args[1:])

	if showVersion {
		fmt.Printf("anymacro %s (%s) %s\n", version, commit, date)
		return
	}

	if len(args) != 2 {
		usage()
		os.Exit(runner.ExitUsage)
	}

	opts := &runner.Options{
		Input:       args[0],
		Output:      args[1],
		Debug:       debug,
		ConfigPath:  *configPath,
		Defines:     defines,
		IncludeDirs: includeDirs,
		Diff:        *diffFlag,
	}

	os.Exit(runner.Run(opts))
}

// parseInterspersed parses args allowing flags after positional arguments
// and returns the positionals in order. Everything after a lone "--" is
// positional.
func parseInterspersed(fs *flag.FlagSet, args []string) []string {
	var tail []string
	if i := slices.Index(args, "--"); i >= 0 {
		args, tail = args[:i], args[i+1:]
	}

	var positional []string
	for {
		// ExitOnError: Parse exits instead of returning an error.
		_ = fs.Parse(args)
		args = fs.Args()
		if len(args) == 0 {
			return append(positional, tail...)
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: anymacro [flags] <input-file> <output-file>

Expand #define macros and evaluate #ifdef, #if and #import directives in
the input file, writing the result to the output file.

Flags:
`)
	flag.PrintDefaults()
}
