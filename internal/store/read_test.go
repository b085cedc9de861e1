package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/recalc/internal/ir"
)

func TestReadSession_Empty(t *testing.T) {
	s := createTestStore(t)

	entries, err := s.ReadSession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if entries == nil {
		t.Error("entries is nil, want empty slice")
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

func TestReadSession_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, seq := range []int64{3, 1, 2} {
		id := "edit-" + string(rune('0'+seq))
		if err := s.Append(ctx, createTestEntry(id, "session-1", seq)); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}
	if err := s.Append(ctx, createTestEntry("other", "session-2", 1)); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	entries, err := s.ReadSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Seq != int64(i+1) {
			t.Errorf("entries[%d].Seq = %d, want %d", i, e.Seq, i+1)
		}
	}
}

func TestReadEntry_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := ir.JournalEntry{
		ID:      "session-1/2",
		Session: "session-1",
		Seq:     2,
		Kind:    ir.EntryUndo,
		Cursor:  0,
		Digest:  "d",
	}
	if err := s.Append(ctx, want); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	got, err := s.ReadEntry(ctx, want.ID)
	if err != nil {
		t.Fatalf("ReadEntry() failed: %v", err)
	}
	if got != want {
		t.Errorf("ReadEntry() = %+v, want %+v", got, want)
	}
}

func TestReadEntry_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadEntry(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	recordSession(t, s, "session-b", []string{"A1", "1"}, []string{"A1", "2"})
	recordSession(t, s, "session-a", []string{"A1", "1"})

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(sessions))
	}
	if sessions[0].Session != "session-a" || sessions[1].Session != "session-b" {
		t.Errorf("sessions not ordered: %+v", sessions)
	}
	if sessions[1].Entries != 2 || sessions[1].LastSeq != 2 {
		t.Errorf("session-b = %+v, want 2 entries ending at seq 2", sessions[1])
	}

	entries, err := s.ReadSession(ctx, "session-b")
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if sessions[1].LastDigest != entries[1].Digest {
		t.Errorf("LastDigest = %q, want %q", sessions[1].LastDigest, entries[1].Digest)
	}
}

func TestLastSession(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.LastSession(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty journal: err = %v, want ErrNotFound", err)
	}

	recordSession(t, s, "0190a000-0000-7000-8000-000000000001", []string{"A1", "1"})
	recordSession(t, s, "0190a000-0000-7000-8000-000000000002", []string{"A1", "1"})

	got, err := s.LastSession(ctx)
	if err != nil {
		t.Fatalf("LastSession() failed: %v", err)
	}
	if got != "0190a000-0000-7000-8000-000000000002" {
		t.Errorf("LastSession() = %q", got)
	}
}
