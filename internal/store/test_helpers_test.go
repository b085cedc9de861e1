package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/recalc/internal/engine"
	"github.com/roach88/recalc/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEntry creates an edit entry with minimal required fields.
func createTestEntry(id, session string, seq int64) ir.JournalEntry {
	return ir.JournalEntry{
		ID:      id,
		Session: session,
		Seq:     seq,
		Kind:    ir.EntryEdit,
		Cell:    "A1",
		Formula: "1",
		Cursor:  int(seq),
		Digest:  "digest-" + id,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordSession drives a journaled workbook through steps. Each step is
// {cell, formula}, or {"undo"} / {"redo"}.
func recordSession(t *testing.T, s *Store, session string, steps ...[]string) *engine.Workbook {
	t.Helper()
	ctx := context.Background()
	wb := engine.NewWorkbook(
		engine.WithJournal(s),
		engine.WithLogger(quietLogger()),
		engine.WithSessionGenerator(engine.NewFixedGenerator(session)),
	)
	for _, step := range steps {
		var err error
		switch step[0] {
		case "undo":
			_, err = wb.Undo(ctx)
		case "redo":
			_, err = wb.Redo(ctx)
		default:
			_, _, err = wb.EditCell(ctx, step[0], step[1])
		}
		if err != nil {
			t.Fatalf("step %v failed: %v", step, err)
		}
	}
	return wb
}
