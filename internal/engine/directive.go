package engine

import (
	"fmt"

	"github.com/donaldgifford/anymacro/internal/macro"
	"github.com/donaldgifford/anymacro/internal/parser"
	"github.com/donaldgifford/anymacro/internal/source"
)

// directive applies one directive line. #else and #endif always act on the
// conditional state; while a branch is skipped the other conditionals only
// record nesting and everything else is ignored.
func (e *Engine) directive(s *source.Stream, l *parser.Line) error {
	c := e.state.Cond

	switch l.Keyword {
	case parser.KeywordEndif:
		c.Endif()
		return nil
	case parser.KeywordElse:
		c.Else()
		return nil
	}

	if c.Skipping() {
		switch l.Keyword {
		case parser.KeywordIfdef, parser.KeywordIfndef, parser.KeywordIf:
			c.Nested()
		}
		return nil
	}

	switch l.Keyword {
	case parser.KeywordIfdef, parser.KeywordIfndef:
		return e.ifdef(l)
	case parser.KeywordIf:
		return e.ifValue(l)
	case parser.KeywordDefine:
		return e.define(l)
	case parser.KeywordUndef:
		return e.undef(l)
	case parser.KeywordImport:
		return e.importFile(s, l)
	case parser.KeywordInclude:
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownDirective, l.Keyword)
	}
}

func (e *Engine) ifdef(l *parser.Line) error {
	name, err := parser.ParseTestedName(l.Arg)
	if err != nil {
		return fmt.Errorf("%s: %w", l.Keyword, err)
	}
	defined := e.state.Defines.Has(name)
	if defined {
		e.log.Printf("Define %s exists", name)
	} else {
		e.log.Printf("Define %s does not exist", name)
	}
	e.state.Cond.If(defined == (l.Keyword == parser.KeywordIfndef))
	return nil
}

func (e *Engine) ifValue(l *parser.Line) error {
	cnd, err := parser.ParseCondition(l.Text)
	if err != nil {
		return err
	}
	m, ok := e.state.Defines.Lookup(cnd.Name)
	if !ok {
		return fmt.Errorf("define %s %w", cnd.Name, ErrUndefinedName)
	}
	holds := cnd.Holds(m.Value)
	e.log.Printf("Define %s has value %q, condition holds: %t", cnd.Name, m.Value, holds)
	e.state.Cond.If(!holds)
	return nil
}

func (e *Engine) define(l *parser.Line) error {
	d, err := parser.ParseDefine(l.Arg)
	if err != nil {
		return err
	}
	m := macro.NewConstant(d.Name, d.Body)
	if d.Params != nil {
		m = macro.NewFunction(d.Name, d.Params, d.Body)
	}
	if err := e.state.Defines.Define(m); err != nil {
		return err
	}
	e.log.Printf("Added define %s", m)
	return nil
}

func (e *Engine) undef(l *parser.Line) error {
	name, err := parser.ParseName(l.Arg)
	if err != nil {
		return err
	}
	if err := e.state.Defines.Undef(name); err != nil {
		return err
	}
	e.log.Printf("Removed define %s", name)
	return nil
}

// importFile suspends s, processes the imported file to completion and then
// resumes s with its queued lines.
func (e *Engine) importFile(s *source.Stream, l *parser.Line) error {
	path, err := parser.ParseImport(l.Arg)
	if err != nil {
		return err
	}
	path = e.importPath(s.Name, path)

	s.Suspend()
	defer s.Resume()
	e.log.Printf("importing %s, %d line(s) of %s queued", path, s.Pending(), s.Name)
	return e.processFile(path)
}
