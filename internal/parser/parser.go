package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrSyntax is wrapped by every error returned from this package.
var ErrSyntax = errors.New("parse error")

// Directive keywords.
const (
	KeywordDefine  = "define"
	KeywordUndef   = "undef"
	KeywordIfdef   = "ifdef"
	KeywordIfndef  = "ifndef"
	KeywordIf      = "if"
	KeywordElse    = "else"
	KeywordEndif   = "endif"
	KeywordImport  = "import"
	KeywordInclude = "include"
)

// maxParams bounds the parameter list of a function macro.
const maxParams = 256

// Operators accepted by #if.
const (
	opEqual    = "=="
	opNotEqual = "!="
)

// Classify determines the type of raw and splits directive lines into
// keyword and argument. num is the 1-indexed line number.
func Classify(raw string, num int) *Line {
	trimmed := strings.TrimSpace(raw)
	l := &Line{Type: LineContent, Num: num, Raw: raw, Text: trimmed}

	switch {
	case strings.HasPrefix(trimmed, "#"):
		l.Type = LineDirective
		l.Keyword, l.Arg, _ = cutSpace(trimmed[1:])

	case strings.HasPrefix(trimmed, "//"):
		l.Type = LineComment
	}

	return l
}

// ParseDefine parses the argument of a #define directive.
//
// The function form NAME(p1,p2) BODY is used when a '(' occurs before the
// first whitespace; otherwise the argument is NAME VALUE, with VALUE being
// everything after the first whitespace character.
func ParseDefine(arg string) (*Define, error) {
	if arg == "" {
		return nil, fmt.Errorf("%w: no name specified for define", ErrSyntax)
	}

	name, value, _ := cutSpace(arg)
	if open := strings.IndexByte(name, '('); open >= 0 {
		return parseFunctionDefine(arg, open)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no name specified for define", ErrSyntax)
	}
	return &Define{Name: name, Body: value}, nil
}

func parseFunctionDefine(arg string, open int) (*Define, error) {
	name := arg[:open]
	if name == "" {
		return nil, fmt.Errorf("%w: no name specified for define", ErrSyntax)
	}

	n := strings.IndexByte(arg[open:], ')')
	if n < 0 {
		return nil, fmt.Errorf("%w: unterminated parameter list for %s", ErrSyntax, name)
	}
	closing := open + n

	d := &Define{
		Name:   name,
		Params: []string{},
		Body:   strings.TrimLeft(arg[closing+1:], " \t"),
	}

	list := arg[open+1 : closing]
	if strings.TrimSpace(list) == "" {
		return d, nil
	}
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" || strings.IndexFunc(p, unicode.IsSpace) >= 0 {
			return nil, fmt.Errorf("%w: bad parameter list (%s) for %s", ErrSyntax, list, name)
		}
		d.Params = append(d.Params, p)
	}
	if len(d.Params) > maxParams {
		return nil, fmt.Errorf("%w: %s has %d parameters, at most %d allowed", ErrSyntax, name, len(d.Params), maxParams)
	}
	return d, nil
}

// ParseName returns the first whitespace separated token of arg.
func ParseName(arg string) (string, error) {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: no name specified", ErrSyntax)
	}
	return fields[0], nil
}

// ParseTestedName returns the name an #ifdef or #ifndef tests: the whole
// trimmed argument, so "#ifdef A B" asks about "A B".
func ParseTestedName(arg string) (string, error) {
	name := strings.TrimSpace(arg)
	if name == "" {
		return "", fmt.Errorf("%w: no name specified", ErrSyntax)
	}
	return name, nil
}

// ParseCondition parses a trimmed "#if" line.
//
// The operator is != if the line contains "!=" anywhere, == otherwise. NAME
// is the trimmed text between the keyword and the operator. VALUE starts one
// character after the operator, so "#if MODE == debug" compares with
// "debug" and "#if MODE==debug" with "ebug".
func ParseCondition(text string) (Condition, error) {
	var c Condition
	op := opEqual
	if strings.Contains(text, opNotEqual) {
		op = opNotEqual
		c.Negate = true
	}

	keyword, rest, found := cutSpace(text)
	if !found {
		return c, fmt.Errorf("%w: missing condition", ErrSyntax)
	}
	oi := strings.Index(rest, op)
	if oi < 0 {
		return c, fmt.Errorf("%w: missing %s or %s operator in %s", ErrSyntax, opEqual, opNotEqual, keyword)
	}

	c.Name = strings.TrimSpace(rest[:oi])
	if c.Name == "" {
		return c, fmt.Errorf("%w: no name specified before %s", ErrSyntax, op)
	}
	if after := rest[oi+len(op):]; after != "" {
		_, w := utf8.DecodeRuneInString(after)
		c.Value = after[w:]
	}
	return c, nil
}

// ParseImport returns the path of an #import directive: the text after the
// last whitespace of its argument.
func ParseImport(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("%w: no path specified for import", ErrSyntax)
	}
	if i := strings.LastIndexFunc(arg, unicode.IsSpace); i >= 0 {
		_, w := utf8.DecodeRuneInString(arg[i:])
		return arg[i+w:], nil
	}
	return arg, nil
}

// cutSpace splits s around its first whitespace character.
func cutSpace(s string) (before, after string, found bool) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, "", false
	}
	_, w := utf8.DecodeRuneInString(s[i:])
	return s[:i], s[i+w:], true
}
