// Package engine drives preprocessing. Directive lines update the define
// table and conditional state shared by a run; content lines are resolved
// and written to an output sink.
//
// Imports are processed synchronously. The importing file's stream is
// suspended, the imported file runs to completion against the same state and
// sink, and the importer then resumes with the lines it had already read
// ahead, so output order always matches input order.
package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/donaldgifford/anymacro/internal/cond"
	"github.com/donaldgifford/anymacro/internal/macro"
	"github.com/donaldgifford/anymacro/internal/output"
	"github.com/donaldgifford/anymacro/internal/parser"
	"github.com/donaldgifford/anymacro/internal/resolver"
	"github.com/donaldgifford/anymacro/internal/source"
)

// State is shared by the top-level file and every file it imports.
type State struct {
	Defines *macro.Table
	Cond    cond.Tracker
}

// NewState returns an empty State using the given conditional mode.
func NewState(mode cond.Mode) *State {
	return &State{Defines: macro.NewTable(), Cond: cond.New(mode)}
}

// Options configures an Engine.
type Options struct {
	// IncludeDirs are searched for imports after the importing file's
	// directory.
	IncludeDirs []string
	// MaxPasses caps macro resolution per line. Zero means unlimited.
	MaxPasses int
	// Conditionals selects the conditional tracking mode.
	Conditionals cond.Mode
	// WarnUnterminated enables the per-file unmatched block warning.
	WarnUnterminated bool
	// Warn receives warnings. Nil discards them.
	Warn io.Writer
	// Log receives debug tracing. Nil discards it.
	Log *log.Logger
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		MaxPasses:        resolver.DefaultMaxPasses,
		Conditionals:     cond.ModeStack,
		WarnUnterminated: true,
	}
}

// Engine preprocesses input files into a single output sink.
type Engine struct {
	opts  Options
	state *State
	res   *resolver.Resolver
	out   *output.Sink
	log   *log.Logger
	warn  io.Writer

	// active holds the files currently being processed, outermost first.
	active []string
}

// New returns an Engine writing to out.
func New(out *output.Sink, opts Options) *Engine {
	logger := opts.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	warn := opts.Warn
	if warn == nil {
		warn = io.Discard
	}

	state := NewState(opts.Conditionals)
	res := resolver.New(state.Defines, logger)
	res.MaxPasses = opts.MaxPasses

	return &Engine{
		opts:  opts,
		state: state,
		res:   res,
		out:   out,
		log:   logger,
		warn:  warn,
	}
}

// Define adds a constant macro before any input is processed.
func (e *Engine) Define(name, value string) error {
	if err := e.state.Defines.Define(macro.NewConstant(name, value)); err != nil {
		return fmt.Errorf("predefining %s: %w", name, err)
	}
	e.log.Printf("Added define %s", name)
	return nil
}

// Run processes the file at path.
func (e *Engine) Run(path string) error {
	err := e.processFile(path)
	e.dump()
	return err
}

// Process processes r as though it were the file name. Relative imports are
// resolved against the directory of name.
func (e *Engine) Process(name string, r io.Reader) error {
	err := e.run(name, source.NewStream(name, r))
	e.dump()
	return err
}

// dump traces the define table and output size at the end of a run.
func (e *Engine) dump() {
	e.log.Printf("%d define(s): %s", e.state.Defines.Len(), strings.Join(e.state.Defines.Names(), " "))
	e.log.Printf("%d line(s) written", e.out.Lines())
}

func (e *Engine) processFile(path string) error {
	s, err := source.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return fmt.Errorf("opening %s: %w", path, err)
	}
	return e.run(path, s)
}

// run drives s to the end of input or the first error, then closes it.
func (e *Engine) run(name string, s *source.Stream) (err error) {
	key := fileKey(name)
	for _, a := range e.active {
		if a == key {
			s.Close()
			return fmt.Errorf("%w: %s", ErrImportCycle, name)
		}
	}
	e.active = append(e.active, key)
	defer func() {
		e.active = e.active[:len(e.active)-1]
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", name, cerr)
		}
	}()

	e.log.Printf("processing %s", name)
	opened := e.state.Cond.Open()

	for {
		l, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var re *source.ReadError
			if errors.As(err, &re) {
				return &LineError{File: name, Line: re.Line, Err: fmt.Errorf("reading: %w", re.Err)}
			}
			return fmt.Errorf("reading %s: %w", name, err)
		}

		line := parser.Classify(l.Text, l.Num)
		if err := e.handle(s, line); err != nil {
			var le *LineError
			if errors.As(err, &le) {
				return err
			}
			return &LineError{File: name, Line: l.Num, Text: l.Text, Err: err}
		}
	}

	if n := e.state.Cond.Open() - opened; n != 0 && e.opts.WarnUnterminated {
		e.log.Printf("%s leaves %d block(s) open", name, n)
		fmt.Fprintf(e.warn, "Warning: %d endifs missing!\n", n)
	}
	return nil
}

// handle dispatches a single classified line.
func (e *Engine) handle(s *source.Stream, l *parser.Line) error {
	switch l.Type {
	case parser.LineDirective:
		return e.directive(s, l)
	case parser.LineComment:
		return nil
	}

	if e.state.Cond.Skipping() {
		return nil
	}
	resolved, err := e.res.Resolve(l.Raw)
	if err != nil {
		return err
	}
	return e.out.WriteLine(resolved)
}

// importPath locates the file an import names. The importing file's
// directory is tried first, then each include directory. If no candidate
// exists the first one is returned so opening it reports the miss.
func (e *Engine) importPath(importer, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	candidates := []string{filepath.Join(filepath.Dir(importer), path)}
	for _, dir := range e.opts.IncludeDirs {
		candidates = append(candidates, filepath.Join(dir, path))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return candidates[0]
}

// fileKey identifies a file for cycle detection.
func fileKey(name string) string {
	if abs, err := filepath.Abs(name); err == nil {
		return abs
	}
	return filepath.Clean(name)
}
