// Package cond tracks nested #if/#ifdef/#ifndef/#else/#endif state.
//
// Two trackers are provided. Stack keeps one frame per open block, so a false
// outer branch also silences every block nested inside it. Counter keeps the
// flat skip counter of earlier anymacro releases, which only records how deep
// the current false branch is and not which level started it.
package cond

import "fmt"

// Mode selects a Tracker implementation.
type Mode string

// Supported modes.
const (
	ModeStack   Mode = "stack"
	ModeCounter Mode = "counter"
)

// ParseMode validates a mode name. The empty string selects ModeStack.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeStack:
		return ModeStack, nil
	case ModeCounter:
		return ModeCounter, nil
	}
	return "", fmt.Errorf("unknown conditional mode %q (want %q or %q)", s, ModeStack, ModeCounter)
}

// Tracker is the conditional state shared by every file of a run.
type Tracker interface {
	// If opens a block. skip reports whether its first branch is false.
	If(skip bool)
	// Nested is called for a block-opening directive seen while skipping.
	Nested()
	// Else switches to the other branch of the innermost block.
	Else()
	// Endif closes the innermost block.
	Endif()
	// Skipping reports whether lines are currently being dropped.
	Skipping() bool
	// Open returns the number of blocks opened and not yet closed. It goes
	// negative when more blocks were closed than opened.
	Open() int
}

// New returns a Tracker for mode.
func New(mode Mode) Tracker {
	if mode == ModeCounter {
		return &Counter{}
	}
	return &Stack{}
}
