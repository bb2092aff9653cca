// Package macro provides the define table: the set of constant and
// function-like macros active during a preprocessor run.
package macro

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Macro is a single definition. Constant macros have nil Params; function
// macros have a non-nil (possibly empty) parameter list and use Value as
// their body template.
type Macro struct {
	Name   string
	Value  string
	Params []string

	// pattern matches a reference to the macro: the bare name for constant
	// macros, a call site of the declared arity for function macros.
	pattern *regexp.Regexp
	// params matches any parameter name inside the body.
	params *regexp.Regexp
}

// NewConstant returns a constant macro substituted literally as value.
func NewConstant(name, value string) *Macro {
	return &Macro{
		Name:    name,
		Value:   value,
		pattern: regexp.MustCompile(regexp.QuoteMeta(name)),
	}
}

// NewFunction returns a function macro with the given parameters and body.
func NewFunction(name string, params []string, body string) *Macro {
	if params == nil {
		params = []string{}
	}
	m := &Macro{
		Name:    name,
		Value:   body,
		Params:  params,
		pattern: regexp.MustCompile(callPattern(name, len(params))),
	}
	if len(params) > 0 {
		m.params = regexp.MustCompile(alternation(params))
	}
	return m
}

// IsFunc reports whether m is a function macro.
func (m *Macro) IsFunc() bool {
	return m.Params != nil
}

// Pattern returns the compiled reference pattern. For function macros,
// submatch 1 spans the whole call site and submatch 2 the argument list.
func (m *Macro) Pattern() *regexp.Regexp {
	return m.pattern
}

// ParamPattern returns a pattern matching any of the parameter names, or nil
// for macros without parameters.
func (m *Macro) ParamPattern() *regexp.Regexp {
	return m.params
}

// String renders m the way it would appear in a define directive.
func (m *Macro) String() string {
	var b strings.Builder
	b.WriteString(m.Name)
	if m.IsFunc() {
		b.WriteByte('(')
		b.WriteString(strings.Join(m.Params, ","))
		b.WriteByte(')')
	}
	if m.Value != "" {
		b.WriteByte(' ')
		b.WriteString(m.Value)
	}
	return b.String()
}

// callPattern builds `(^|\W)(name\((args)\))` where args holds exactly n
// comma separated slots, none of which may contain a comma or ')'.
func callPattern(name string, n int) string {
	var args string
	switch n {
	case 0:
		args = `\s*`
	case 1:
		args = `[^,)]*`
	default:
		args = `(?:[^,)]*,){` + strconv.Itoa(n-1) + `}[^,)]*`
	}
	return `(?:^|\W)(` + regexp.QuoteMeta(name) + `\((` + args + `)\))`
}

// alternation builds a pattern matching any of names, longest first so a
// parameter is never shadowed by one of its prefixes.
func alternation(names []string) string {
	sorted := slices.Clone(names)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	quoted := make([]string, len(sorted))
	for i, n := range sorted {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return strings.Join(quoted, "|")
}
