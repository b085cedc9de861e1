package engine

import "github.com/roach88/recalc/internal/ir"

// History is a linear stack of committed snapshots with a cursor.
//
// States are cursor positions 0..Len()-1. Commit is the only transition that
// changes the sequence (it discards the redo tail, then appends); Undo and
// Redo only move the cursor.
//
// INVARIANTS:
//   - 0 <= cursor < len(entries)
//   - entries are never modified after being appended
//
// History is not safe for concurrent use; Workbook serialises access.
type History struct {
	entries []ir.Snapshot
	cursor  int
	limit   int
}

// NewHistory creates a history whose only entry is initial.
//
// limit bounds the retained entries; 0 means unlimited. When a commit
// exceeds the limit the oldest entries are dropped and the cursor shifts
// with them.
func NewHistory(initial ir.Snapshot, limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{
		entries: []ir.Snapshot{initial},
		limit:   limit,
	}
}

// Commit truncates entries after the cursor, appends next, and moves the
// cursor to it.
func (h *History) Commit(next ir.Snapshot) {
	h.entries = append(h.entries[:h.cursor+1:h.cursor+1], next)
	h.cursor = len(h.entries) - 1

	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append([]ir.Snapshot(nil), h.entries[drop:]...)
		h.cursor -= drop
	}
}

// Undo moves the cursor back one entry and returns it.
// At cursor 0 it returns the current entry and a NOTHING_TO_UNDO error.
func (h *History) Undo() (ir.Snapshot, error) {
	if !h.CanUndo() {
		return h.Current(), errNothingToUndo
	}
	h.cursor--
	return h.Current(), nil
}

// Redo moves the cursor forward one entry and returns it.
// At the last entry it returns the current entry and a NOTHING_TO_REDO error.
func (h *History) Redo() (ir.Snapshot, error) {
	if !h.CanRedo() {
		return h.Current(), errNothingToRedo
	}
	h.cursor++
	return h.Current(), nil
}

// Current returns the entry under the cursor.
func (h *History) Current() ir.Snapshot {
	return h.entries[h.cursor]
}

// CanUndo reports whether the cursor is past the first entry.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether entries exist after the cursor.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Cursor returns the cursor index.
func (h *History) Cursor() int {
	return h.cursor
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	return len(h.entries)
}
