package store

import (
	"context"
	"fmt"

	"github.com/roach88/recalc/internal/ir"
)

// Append inserts a journal entry.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - rewriting an entry with
// the same id is silently ignored. A different entry claiming an existing
// (session, seq) pair violates UNIQUE and returns an error.
//
// Append implements engine.Journal.
func (s *Store) Append(ctx context.Context, e ir.JournalEntry) error {
	if e.Session == "" {
		return fmt.Errorf("append entry %q: empty session", e.ID)
	}

	rejected := 0
	if e.Rejected {
		rejected = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal_entries
		(id, session, seq, kind, cell, formula, rejected, cursor, digest, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.Session,
		e.Seq,
		string(e.Kind),
		string(e.Cell),
		e.Formula,
		rejected,
		e.Cursor,
		e.Digest,
		ir.EngineVersion,
		ir.SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("append entry %q: %w", e.ID, err)
	}

	return nil
}
