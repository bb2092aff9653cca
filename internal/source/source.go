// Package source provides the line streams the engine reads input files
// through.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSuspended is returned by Next while the stream is suspended.
var ErrSuspended = errors.New("stream suspended")

// DefaultReadAhead is the number of lines fetched from the underlying
// reader each time the queue runs dry.
const DefaultReadAhead = 64

// Line is one input line without its terminator.
type Line struct {
	Num  int // 1-indexed.
	Text string
}

// ReadError reports a failure reading the underlying input. Line is the
// number of the line that could not be read.
type ReadError struct {
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Stream delivers the lines of one input in order. Lines are read ahead in
// batches into a queue; while the stream is suspended the queue is kept
// intact and delivered first once it resumes.
type Stream struct {
	Name      string
	ReadAhead int

	br        *bufio.Reader
	closer    io.Closer
	queue     []Line
	num       int
	eof       bool
	err       error // delivered once the queue drains
	suspended bool
}

// NewStream returns a stream over r. If r is an io.Closer it is closed by
// Close.
func NewStream(name string, r io.Reader) *Stream {
	s := &Stream{Name: name, ReadAhead: DefaultReadAhead, br: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Next returns the next line, io.EOF at the end of input, or ErrSuspended.
// A read failure is returned as a *ReadError after every line read before
// it has been delivered.
func (s *Stream) Next() (Line, error) {
	if s.suspended {
		return Line{}, ErrSuspended
	}
	if len(s.queue) == 0 {
		s.fill()
		if len(s.queue) == 0 {
			if s.err != nil {
				return Line{}, s.err
			}
			return Line{}, io.EOF
		}
	}
	l := s.queue[0]
	s.queue = s.queue[1:]
	return l, nil
}

// fill reads up to ReadAhead lines into the queue. Lines have no length
// limit. A trailing "\r" is dropped along with the newline.
func (s *Stream) fill() {
	n := s.ReadAhead
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n && !s.eof; i++ {
		text, err := s.br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			// A partial line is dropped with the failure.
			s.eof = true
			s.err = &ReadError{Line: s.num + 1, Err: err}
			return
		}
		if text != "" {
			s.num++
			text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
			s.queue = append(s.queue, Line{Num: s.num, Text: text})
		}
		if err != nil {
			s.eof = true
		}
	}
}

// Suspend pauses delivery. Lines already read stay queued in order.
func (s *Stream) Suspend() {
	s.suspended = true
}

// Resume continues delivery, starting with the queued lines.
func (s *Stream) Resume() {
	s.suspended = false
}

// Pending returns the number of lines read but not yet delivered.
func (s *Stream) Pending() int {
	return len(s.queue)
}

// Close releases the underlying reader and drops any queued lines.
func (s *Stream) Close() error {
	s.queue = nil
	s.eof = true
	s.err = nil
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}
