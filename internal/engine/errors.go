package engine

import (
	"errors"
	"fmt"

	"github.com/donaldgifford/anymacro/internal/macro"
	"github.com/donaldgifford/anymacro/internal/parser"
	"github.com/donaldgifford/anymacro/internal/resolver"
)

// Error kinds. Every error returned by Run or Process matches exactly one
// of these with errors.Is, except I/O failures.
var (
	ErrParse            = parser.ErrSyntax
	ErrDuplicateDefine  = macro.ErrDuplicate
	ErrUndefinedName    = macro.ErrUndefined
	ErrUnknownDirective = errors.New("unknown directive")
	ErrMissingFile      = errors.New("file does not exist")
	ErrImportCycle      = errors.New("import cycle")
	ErrRecursionLimit   = resolver.ErrRecursionLimit
)

// LineError records the input line a fatal error occurred on.
type LineError struct {
	File string
	Line int
	Text string // the offending line as read, empty if it could not be read
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
