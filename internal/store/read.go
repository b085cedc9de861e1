package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/recalc/internal/ir"
)

// ErrNotFound is returned when a requested entry or session does not exist.
var ErrNotFound = errors.New("not found")

// SessionSummary describes one journaled session.
type SessionSummary struct {
	Session    string `json:"session"`
	Entries    int    `json:"entries"`
	LastSeq    int64  `json:"last_seq"`
	LastDigest string `json:"last_digest"`
}

const entryColumns = `id, session, seq, kind, cell, formula, rejected, cursor, digest`

// ReadSession returns every entry of session in seq order.
// Returns an empty slice (not nil) if the session has no entries.
func (s *Store) ReadSession(ctx context.Context, session string) ([]ir.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE session = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query session %q: %w", session, err)
	}
	defer rows.Close()

	entries := []ir.JournalEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session %q: %w", session, err)
	}

	return entries, nil
}

// ReadEntry returns the entry with the given id, or ErrNotFound.
func (s *Store) ReadEntry(ctx context.Context, id string) (ir.JournalEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE id = ?
	`, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.JournalEntry{}, fmt.Errorf("entry %q: %w", id, ErrNotFound)
	}
	return e, err
}

// ListSessions summarises every session, ordered by session id.
// UUIDv7 session ids sort in creation order.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT j.session, COUNT(*), MAX(j.seq),
		       (SELECT l.digest FROM journal_entries l
		        WHERE l.session = j.session
		        ORDER BY l.seq DESC LIMIT 1)
		FROM journal_entries j
		GROUP BY j.session
		ORDER BY j.session COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	summaries := []SessionSummary{}
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.Session, &sum.Entries, &sum.LastSeq, &sum.LastDigest); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return summaries, nil
}

// LastSession returns the most recently created session id, or ErrNotFound
// when the journal is empty.
func (s *Store) LastSession(ctx context.Context) (string, error) {
	var session string
	err := s.db.QueryRowContext(ctx, `
		SELECT session FROM journal_entries
		ORDER BY session COLLATE BINARY DESC
		LIMIT 1
	`).Scan(&session)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("last session: %w", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("last session: %w", err)
	}
	return session, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (ir.JournalEntry, error) {
	var (
		e        ir.JournalEntry
		kind     string
		cell     string
		rejected int
	)
	err := row.Scan(&e.ID, &e.Session, &e.Seq, &kind, &cell, &e.Formula, &rejected, &e.Cursor, &e.Digest)
	if errors.Is(err, sql.ErrNoRows) {
		return e, err
	}
	if err != nil {
		return e, fmt.Errorf("scan entry: %w", err)
	}
	e.Kind = ir.EntryKind(kind)
	e.Cell = ir.CellID(cell)
	e.Rejected = rejected != 0
	return e, nil
}
