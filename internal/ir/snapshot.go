package ir

import "maps"

// Snapshot is one complete, immutable state of all cells (the Cell Store).
//
// An absent key is an implicit empty cell. Snapshots are safe to share
// between goroutines: nothing reachable from a Snapshot is ever mutated.
// Use Edit to derive a new Snapshot.
type Snapshot struct {
	cells map[CellID]Cell
}

// EmptySnapshot returns a snapshot with no cells.
func EmptySnapshot() Snapshot {
	return Snapshot{}
}

// NewSnapshot builds a snapshot from cells. The map is copied.
func NewSnapshot(cells map[CellID]Cell) Snapshot {
	if len(cells) == 0 {
		return Snapshot{}
	}
	return Snapshot{cells: maps.Clone(cells)}
}

// Get returns the cell for id, or the implicit empty cell.
func (s Snapshot) Get(id CellID) Cell {
	if c, ok := s.cells[id]; ok {
		return c
	}
	return EmptyCell()
}

// Lookup returns the cell for id and whether it is materialised.
func (s Snapshot) Lookup(id CellID) (Cell, bool) {
	c, ok := s.cells[id]
	return c, ok
}

// Len returns the number of materialised cells.
func (s Snapshot) Len() int {
	return len(s.cells)
}

// IDs returns the materialised cell ids in column-then-row order.
func (s Snapshot) IDs() []CellID {
	ids := make([]CellID, 0, len(s.cells))
	for id := range s.cells {
		ids = append(ids, id)
	}
	SortCellIDs(ids)
	return ids
}

// Equal reports whether two snapshots materialise the same cells with
// identical contents.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.cells) != len(other.cells) {
		return false
	}
	for id, c := range s.cells {
		oc, ok := other.cells[id]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	return true
}

// Edit returns a Builder seeded with s. s itself is never modified.
func (s Snapshot) Edit() *Builder {
	return &Builder{base: s}
}

// Builder is a copy-on-write working copy of a Snapshot.
// The base map is cloned on the first write.
type Builder struct {
	base  Snapshot
	cells map[CellID]Cell
}

// Get returns the working value of id, or the implicit empty cell.
func (b *Builder) Get(id CellID) Cell {
	if b.cells != nil {
		if c, ok := b.cells[id]; ok {
			return c
		}
		return EmptyCell()
	}
	return b.base.Get(id)
}

// Lookup returns the working value of id and whether it is materialised.
func (b *Builder) Lookup(id CellID) (Cell, bool) {
	if b.cells != nil {
		c, ok := b.cells[id]
		return c, ok
	}
	return b.base.Lookup(id)
}

// Set writes c for id in the working copy.
func (b *Builder) Set(id CellID, c Cell) {
	if b.cells == nil {
		b.cells = maps.Clone(b.base.cells)
		if b.cells == nil {
			b.cells = make(map[CellID]Cell)
		}
	}
	if c.Value == nil {
		c.Value = Empty
	}
	b.cells[id] = c
}

// Materialize ensures id exists, inserting an empty placeholder if absent.
func (b *Builder) Materialize(id CellID) Cell {
	if c, ok := b.Lookup(id); ok {
		return c
	}
	c := EmptyCell()
	b.Set(id, c)
	return c
}

// Snapshot freezes the working copy. Later writes to the Builder start a
// fresh copy and never reach the returned Snapshot.
func (b *Builder) Snapshot() Snapshot {
	if b.cells == nil {
		return b.base
	}
	s := Snapshot{cells: b.cells}
	b.cells = nil
	b.base = s
	return s
}
