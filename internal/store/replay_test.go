package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/recalc/internal/engine"
	"github.com/roach88/recalc/internal/evaluator"
	"github.com/roach88/recalc/internal/ir"
)

func TestReplaySession_Reproduces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	wb := recordSession(t, s, "session-1",
		[]string{"A1", "5"},
		[]string{"B1", "=A1+1"},
		[]string{"A1", "=B1"},
		[]string{"undo"},
		[]string{"C1", "=Z99+1"},
		[]string{"undo"},
		[]string{"redo"},
	)

	result, err := s.ReplaySession(ctx, "session-1", engine.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("ReplaySession() failed: %v", err)
	}
	if !result.OK() {
		t.Fatalf("replay diverged: %+v", result.Mismatches)
	}
	if result.Entries != 7 {
		t.Errorf("Entries = %d, want 7", result.Entries)
	}
	if !result.Final.Equal(wb.Current()) {
		t.Error("final snapshot differs from the recorded workbook")
	}
}

func TestReplaySession_MissingSession(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReplaySession(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReplaySession_DetectsTamperedDigest(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	recordSession(t, s, "session-1", []string{"A1", "5"}, []string{"B1", "=A1+1"})
	if _, err := s.db.Exec(`UPDATE journal_entries SET digest = 'bogus' WHERE seq = 2`); err != nil {
		t.Fatalf("tamper failed: %v", err)
	}

	result, err := s.ReplaySession(ctx, "session-1", engine.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("ReplaySession() failed: %v", err)
	}
	if result.OK() {
		t.Fatal("expected a mismatch")
	}
	m := result.Mismatches[0]
	if m.Seq != 2 || m.Field != "digest" || m.Want != "bogus" {
		t.Errorf("mismatch = %+v, want digest mismatch at seq 2", m)
	}
}

func TestReplaySession_DetectsDifferentEvaluator(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	recordSession(t, s, "session-1", []string{"A1", "=2+2"})

	five := engine.WithEvaluator(evaluator.Func(func(string) (float64, error) { return 5, nil }))
	result, err := s.ReplaySession(ctx, "session-1", five, engine.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("ReplaySession() failed: %v", err)
	}
	if result.OK() {
		t.Fatal("expected a digest mismatch")
	}
	if got := result.Final.Get("A1").Value; got != ir.Number(5) {
		t.Errorf("A1 = %v, want 5", got)
	}
}

func TestReplaySession_UnrepeatableUndo(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	e := ir.JournalEntry{ID: "session-1/1", Session: "session-1", Seq: 1, Kind: ir.EntryUndo, Digest: "d"}
	if err := s.Append(ctx, e); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	result, err := s.ReplaySession(ctx, "session-1", engine.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("ReplaySession() failed: %v", err)
	}
	if result.OK() || result.Mismatches[0].Field != "error" {
		t.Errorf("mismatches = %+v, want an error mismatch", result.Mismatches)
	}
}

func TestReplayAll(t *testing.T) {
	s := createTestStore(t)

	recordSession(t, s, "session-a", []string{"A1", "1"})
	recordSession(t, s, "session-b", []string{"A1", "1"}, []string{"undo"})

	results, err := s.ReplayAll(context.Background(), engine.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("ReplayAll() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for _, r := range results {
		if !r.OK() {
			t.Errorf("session %s diverged: %+v", r.Session, r.Mismatches)
		}
	}
}
