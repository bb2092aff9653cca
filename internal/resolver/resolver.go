// Package resolver expands macro references in content lines.
//
// A pass applies every macro of the define table in definition order:
// constant macros are substituted wherever their name stands as a whole
// word, function macros are expanded at every call site of matching arity.
// Passes repeat until the line stops changing, so macros defined in terms
// of other macros resolve whatever order they were defined in.
package resolver

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/donaldgifford/anymacro/internal/macro"
)

// ErrRecursionLimit is returned when a line does not stabilize within the
// configured number of passes.
var ErrRecursionLimit = errors.New("macro recursion limit reached")

// DefaultMaxPasses bounds resolution when no limit is configured.
const DefaultMaxPasses = 100

// Resolver rewrites content lines against a define table.
type Resolver struct {
	table *macro.Table
	// MaxPasses caps the fixpoint passes over a line and the extra call
	// sites a function macro may introduce in one pass. It also bounds long
	// chains of macros that each resolve one step per pass. Zero means
	// unlimited.
	MaxPasses int
	log       *log.Logger
}

// New returns a Resolver reading definitions from table. A nil logger
// discards debug output.
func New(table *macro.Table, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Resolver{table: table, MaxPasses: DefaultMaxPasses, log: logger}
}

// Resolve expands line until a pass leaves it unchanged.
func (r *Resolver) Resolve(line string) (string, error) {
	for pass := 1; ; pass++ {
		next, err := r.pass(line)
		if err != nil {
			return "", err
		}
		if next == line {
			return line, nil
		}
		if r.MaxPasses > 0 && pass >= r.MaxPasses {
			return "", fmt.Errorf("%w: line still changing after %d passes", ErrRecursionLimit, pass)
		}
		line = next
	}
}

// pass applies each macro once, piping the output of one into the next.
func (r *Resolver) pass(line string) (string, error) {
	for _, m := range r.table.Macros() {
		if m.IsFunc() {
			var err error
			if line, err = r.expandCalls(line, m); err != nil {
				return "", err
			}
			continue
		}
		line = r.substitute(line, m)
	}
	return line, nil
}

// substitute replaces whole-word occurrences of a constant macro's name.
func (r *Resolver) substitute(line string, m *macro.Macro) string {
	if !strings.Contains(line, m.Name) {
		return line
	}
	out, n := replaceWords(line, m.Pattern().FindAllStringIndex(line, -1), func(string) string {
		return m.Value
	})
	if n > 0 {
		r.log.Printf("line has define %s (%d match(es))", m.Name, n)
	}
	return out
}

// expandCalls replaces call sites of a function macro one at a time until
// none remain. The call sites present up front are always expanded;
// MaxPasses bounds the ones that expansion introduces.
func (r *Resolver) expandCalls(line string, m *macro.Macro) (string, error) {
	limit := len(m.Pattern().FindAllStringIndex(line, -1)) + r.MaxPasses
	for n := 0; ; n++ {
		loc := m.Pattern().FindStringSubmatchIndex(line)
		if loc == nil {
			return line, nil
		}
		if r.MaxPasses > 0 && n >= limit {
			return "", fmt.Errorf("%w: %s expanded %d times", ErrRecursionLimit, m.Name, n)
		}
		call, args := line[loc[2]:loc[3]], splitArgs(line[loc[4]:loc[5]], len(m.Params))
		body := bind(m, args)
		r.log.Printf("expanding %s -> %s", call, body)
		line = line[:loc[2]] + body + line[loc[3]:]
	}
}

// splitArgs splits a matched argument list on commas and trims each slot.
func splitArgs(list string, n int) []string {
	if n == 0 {
		return nil
	}
	args := strings.Split(list, ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return args
}

// bind substitutes call arguments for whole-word parameter names in a copy
// of the macro body. All parameters are replaced in a single scan, so an
// argument that spells another parameter's name is left alone.
func bind(m *macro.Macro, args []string) string {
	re := m.ParamPattern()
	if re == nil {
		return m.Value
	}
	out, _ := replaceWords(m.Value, re.FindAllStringIndex(m.Value, -1), func(param string) string {
		if i := slices.Index(m.Params, param); i >= 0 && i < len(args) {
			return args[i]
		}
		return param
	})
	return out
}

// replaceWords rewrites the matches in locs that are not adjacent to a
// word character. It returns the new text and the number of replacements.
func replaceWords(s string, locs [][]int, repl func(match string) string) (string, int) {
	var b strings.Builder
	last, n := 0, 0
	for _, loc := range locs {
		if !bounded(s, loc[0], loc[1]) {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(repl(s[loc[0]:loc[1]]))
		last = loc[1]
		n++
	}
	if n == 0 {
		return s, 0
	}
	b.WriteString(s[last:])
	return b.String(), n
}

// bounded reports whether s[i:j] has a non-word character or the edge of
// s on both sides.
func bounded(s string, i, j int) bool {
	return (i == 0 || !isWord(s[i-1])) && (j == len(s) || !isWord(s[j]))
}

func isWord(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
