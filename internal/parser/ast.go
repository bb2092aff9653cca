// Package parser classifies preprocessor input lines and parses directive
// arguments.
package parser

// LineType classifies a source line.
type LineType int

const (
	// LineContent is a line subject to macro resolution.
	LineContent LineType = iota
	// LineComment is a full-line "//" comment.
	LineComment
	// LineDirective is a line starting with '#'.
	LineDirective
)

//go:generate stringer -type=LineType

// Line is a single classified input line.
type Line struct {
	Type LineType
	Num  int    // 1-indexed source line number.
	Raw  string // Unmodified text, passed to the resolver for content lines.
	Text string // Raw with surrounding whitespace removed.

	// Directive fields.
	Keyword string // define, undef, ifdef, ... (without '#').
	Arg     string // Everything after the whitespace that ends Keyword.
}

// Condition is the parsed form of "#if NAME == VALUE" / "#if NAME != VALUE".
type Condition struct {
	Name   string
	Value  string
	Negate bool // != rather than ==
}

// Holds reports whether a macro whose value is v satisfies c.
func (c Condition) Holds(v string) bool {
	if c.Negate {
		return v != c.Value
	}
	return v == c.Value
}

// Define is the parsed form of a #define directive. Params is nil for
// constant macros.
type Define struct {
	Name   string
	Params []string
	Body   string
}
