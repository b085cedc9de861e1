package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/roach88/recalc/internal/engine"
	"github.com/roach88/recalc/internal/ir"
)

// Mismatch is one field of a journal entry that replay did not reproduce.
type Mismatch struct {
	Seq   int64  `json:"seq"`
	Field string `json:"field"`
	Want  string `json:"want"`
	Got   string `json:"got"`
}

// ReplayResult is the outcome of re-running one session.
type ReplayResult struct {
	Session    string      `json:"session"`
	Entries    int         `json:"entries"`
	Mismatches []Mismatch  `json:"mismatches"`
	Final      ir.Snapshot `json:"-"`
}

// OK reports whether every entry was reproduced exactly.
func (r ReplayResult) OK() bool {
	return len(r.Mismatches) == 0
}

// ReplaySession re-runs the entries of session on a fresh workbook and
// compares each recorded digest, cursor, rejection flag and edit id with
// what the engine produces now.
//
// opts configure the fresh workbook (evaluator, logger, history limit);
// the session id and an empty journal are always imposed so the replay
// computes the same edit ids without writing. The history limit must match
// the one the session was recorded with for cursors to agree.
func (s *Store) ReplaySession(ctx context.Context, session string, opts ...engine.Option) (ReplayResult, error) {
	entries, err := s.ReadSession(ctx, session)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %q: %w", session, err)
	}
	if len(entries) == 0 {
		return ReplayResult{}, fmt.Errorf("replay %q: %w", session, ErrNotFound)
	}

	wbOpts := append(append([]engine.Option(nil), opts...),
		engine.WithSessionGenerator(engine.NewFixedGenerator(session)),
		engine.WithJournal(nil),
	)
	wb := engine.NewWorkbook(wbOpts...)

	result := ReplayResult{Session: session, Entries: len(entries)}
	mismatch := func(seq int64, field, want, got string) {
		if want != got {
			result.Mismatches = append(result.Mismatches, Mismatch{Seq: seq, Field: field, Want: want, Got: got})
		}
	}

	for i, e := range entries {
		mismatch(e.Seq, "seq", strconv.Itoa(i+1), strconv.FormatInt(e.Seq, 10))

		var (
			snap    ir.Snapshot
			stepErr error
		)
		switch e.Kind {
		case ir.EntryEdit:
			var out engine.Outcome
			snap, out, stepErr = wb.EditCell(ctx, string(e.Cell), e.Formula)
			if stepErr == nil {
				mismatch(e.Seq, "rejected", strconv.FormatBool(e.Rejected), strconv.FormatBool(out.Rejected))
				id, err := ir.EditID(session, int64(i+1), e.Cell, e.Formula)
				if err != nil {
					return result, fmt.Errorf("replay %q seq %d: %w", session, e.Seq, err)
				}
				mismatch(e.Seq, "id", e.ID, id)
			}
		case ir.EntryUndo:
			snap, stepErr = wb.Undo(ctx)
		case ir.EntryRedo:
			snap, stepErr = wb.Redo(ctx)
		default:
			return result, fmt.Errorf("replay %q seq %d: unknown entry kind %q", session, e.Seq, e.Kind)
		}
		if stepErr != nil {
			// A transition that cannot be repeated is a divergence, not a
			// storage failure.
			mismatch(e.Seq, "error", "", stepErr.Error())
			continue
		}

		digest, err := ir.SnapshotDigest(snap)
		if err != nil {
			return result, fmt.Errorf("replay %q seq %d: %w", session, e.Seq, err)
		}
		mismatch(e.Seq, "digest", e.Digest, digest)

		cursor, _ := wb.Cursor()
		mismatch(e.Seq, "cursor", strconv.Itoa(e.Cursor), strconv.Itoa(cursor))
	}

	result.Final = wb.Current()
	return result, nil
}

// ReplayAll replays every session in the journal, in session order.
func (s *Store) ReplayAll(ctx context.Context, opts ...engine.Option) ([]ReplayResult, error) {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]ReplayResult, 0, len(sessions))
	for _, sum := range sessions {
		r, err := s.ReplaySession(ctx, sum.Session, opts...)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}
