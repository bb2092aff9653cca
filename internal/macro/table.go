package macro

import (
	"errors"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Table errors.
var (
	ErrDuplicate = errors.New("already exists")
	ErrUndefined = errors.New("does not exist")
)

// Table maps macro names to definitions. Macros are visited in definition
// order so that resolution output is deterministic.
type Table struct {
	byName map[string]*Macro
	order  []string
}

// NewTable returns an empty define table.
func NewTable() *Table {
	return &Table{byName: map[string]*Macro{}}
}

// Define adds m. Redefining an existing name is an error.
func (t *Table) Define(m *Macro) error {
	if _, ok := t.byName[m.Name]; ok {
		return fmt.Errorf("define %s %w", m.Name, ErrDuplicate)
	}
	t.byName[m.Name] = m
	t.order = append(t.order, m.Name)
	return nil
}

// Undef removes the macro called name.
func (t *Table) Undef(name string) error {
	if _, ok := t.byName[name]; !ok {
		return fmt.Errorf("define %s %w", name, ErrUndefined)
	}
	delete(t.byName, name)
	if i := slices.Index(t.order, name); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
	return nil
}

// Lookup returns the macro called name.
func (t *Table) Lookup(name string) (*Macro, bool) {
	m, ok := t.byName[name]
	return m, ok
}

// Has reports whether name is defined.
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Len returns the number of defined macros.
func (t *Table) Len() int {
	return len(t.order)
}

// Macros returns the definitions in the order they were made.
func (t *Table) Macros() []*Macro {
	out := make([]*Macro, len(t.order))
	for i, name := range t.order {
		out[i] = t.byName[name]
	}
	return out
}

// Names returns the defined names sorted lexically.
func (t *Table) Names() []string {
	names := maps.Keys(t.byName)
	slices.Sort(names)
	return names
}
