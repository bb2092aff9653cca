// Package output provides the append-only sink resolved lines are written to.
package output

import (
	"fmt"
	"io"
	"os"
)

// Sink appends lines to an underlying writer. Each line is written as soon
// as it is produced, so a run that fails part way leaves the lines resolved
// so far in place.
type Sink struct {
	w      io.Writer
	closer io.Closer
	lines  int
}

// NewSink returns a Sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Create truncates or creates the file at path and returns a Sink over it.
func Create(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating output %s: %w", path, err)
	}
	return &Sink{w: f, closer: f}, nil
}

// WriteLine appends line and a newline.
func (s *Sink) WriteLine(line string) error {
	if _, err := io.WriteString(s.w, line+"\n"); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	s.lines++
	return nil
}

// Lines returns the number of lines written.
func (s *Sink) Lines() int {
	return s.lines
}

// Close closes the underlying file, if the Sink owns one.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}
