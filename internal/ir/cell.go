package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// CellID identifies a cell, canonically "{column-label}{row-number}" (e.g. "A1").
// IDs are compared only for equality and used as map keys.
type CellID string

// ParseCellID normalises s to upper case and checks that it is one or more
// ASCII letters followed by one or more digits.
func ParseCellID(s string) (CellID, error) {
	id := CellID(strings.ToUpper(strings.TrimSpace(s)))
	if _, _, ok := id.split(); !ok {
		return "", fmt.Errorf("invalid cell id %q: want letters followed by digits", s)
	}
	return id, nil
}

// split returns the column label and row number of a well-formed id.
func (id CellID) split() (string, int, bool) {
	s := string(id)
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	if i == 0 || i == len(s) {
		return "", 0, false
	}
	for j := i; j < len(s); j++ {
		if !isDigit(s[j]) {
			return "", 0, false
		}
	}
	row, err := strconv.Atoi(s[i:])
	if err != nil {
		return "", 0, false
	}
	return s[:i], row, true
}

// compareCellIDs orders ids by column label (shorter labels first, so B < AA)
// and then by row. Malformed ids sort after well-formed ones, by string.
func compareCellIDs(a, b CellID) int {
	ca, ra, okA := a.split()
	cb, rb, okB := b.split()
	switch {
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	case !okA && !okB:
		return strings.Compare(string(a), string(b))
	}
	if len(ca) != len(cb) {
		return len(ca) - len(cb)
	}
	if c := strings.Compare(ca, cb); c != 0 {
		return c
	}
	return ra - rb
}

// SortCellIDs sorts ids in place in column-then-row order.
func SortCellIDs(ids []CellID) {
	slices.SortFunc(ids, compareCellIDs)
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Cell is a single addressable slot. Cells are values: every method that
// changes a Cell returns a copy and never shares the Dependents backing array.
type Cell struct {
	// Formula is the raw user input: a literal, or "=" followed by an expression.
	Formula string

	// Value is the computed content.
	Value Value

	// Dependents lists the cells whose formulas reference this cell, in the
	// order the edges were recorded. Nil when empty.
	Dependents []CellID

	// Reads lists the distinct references of the last accepted formula: the
	// cells whose Dependents carry this cell. A #CIRCULAR edit keeps the
	// previous Reads, so it can differ from the references of Formula.
	Reads []CellID
}

// EmptyCell returns the implicit cell for an absent key.
func EmptyCell() Cell {
	return Cell{Value: Empty}
}

// HasDependent reports whether id is recorded as a dependent of c.
func (c Cell) HasDependent(id CellID) bool {
	return slices.Contains(c.Dependents, id)
}

// WithDependent returns c with id appended to its dependents.
// Insertion is idempotent: an existing edge is not duplicated.
func (c Cell) WithDependent(id CellID) Cell {
	if c.HasDependent(id) {
		return c
	}
	deps := make([]CellID, len(c.Dependents), len(c.Dependents)+1)
	copy(deps, c.Dependents)
	c.Dependents = append(deps, id)
	return c
}

// WithoutDependent returns c with id removed from its dependents.
func (c Cell) WithoutDependent(id CellID) Cell {
	if !c.HasDependent(id) {
		return c
	}
	var deps []CellID
	for _, d := range c.Dependents {
		if d != id {
			deps = append(deps, d)
		}
	}
	c.Dependents = deps
	return c
}

// IsFormula reports whether the cell's input is a formula.
func (c Cell) IsFormula() bool {
	return IsFormula(c.Formula)
}

// IsFormula reports whether raw input is a formula (starts with "=").
func IsFormula(raw string) bool {
	return strings.HasPrefix(raw, "=")
}

// Equal reports whether two cells hold the same formula and value, and the
// same dependents and reads (in order).
func (c Cell) Equal(other Cell) bool {
	if c.Formula != other.Formula {
		return false
	}
	if !valuesEqual(c.Value, other.Value) {
		return false
	}
	return slices.Equal(c.Dependents, other.Dependents) && slices.Equal(c.Reads, other.Reads)
}

func valuesEqual(a, b Value) bool {
	if a == nil {
		a = Empty
	}
	if b == nil {
		b = Empty
	}
	return a == b
}
