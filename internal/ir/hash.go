package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSnapshot = "recalc/snapshot/v1"
	DomainEdit     = "recalc/edit/v1"
)

// Value kind names used in canonical and journal encodings.
const (
	KindNumber  = "number"
	KindLiteral = "literal"
	KindError   = "error"
)

// KindOf returns the kind name of v. A nil value is the empty literal.
func KindOf(v Value) string {
	switch v.(type) {
	case Number:
		return KindNumber
	case ErrorValue:
		return KindError
	default:
		return KindLiteral
	}
}

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalValue returns the canonical form of v: {"kind": ..., "text": ...}.
func CanonicalValue(v Value) map[string]any {
	if v == nil {
		v = Empty
	}
	return map[string]any{
		"kind": KindOf(v),
		"text": v.Text(),
	}
}

// CanonicalCell returns the canonical form of a cell.
func CanonicalCell(c Cell) map[string]any {
	return map[string]any{
		"formula":    c.Formula,
		"value":      CanonicalValue(c.Value),
		"dependents": idStrings(c.Dependents),
		"reads":      idStrings(c.Reads),
	}
}

func idStrings(ids []CellID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// CanonicalSnapshot returns the canonical form of s keyed by cell id.
func CanonicalSnapshot(s Snapshot) map[string]any {
	cells := make(map[string]any, s.Len())
	for id, c := range s.cells {
		cells[string(id)] = CanonicalCell(c)
	}
	return map[string]any{"cells": cells}
}

// SnapshotDigest computes the content-addressed digest of a snapshot.
//
// Equal snapshots have the same digest. Text is NFC-normalised first, so
// snapshots that differ only in Unicode normal form also share a digest.
// Text that is not valid UTF-8 is an error.
func SnapshotDigest(s Snapshot) (string, error) {
	canonical, err := MarshalCanonical(CanonicalSnapshot(s))
	if err != nil {
		return "", fmt.Errorf("SnapshotDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// EditID computes the content-addressed id of a journaled edit.
// The id is stable across replays given the same inputs.
func EditID(session string, seq int64, cell CellID, formula string) (string, error) {
	obj := map[string]any{
		"session": session,
		"seq":     seq,
		"cell":    string(cell),
		"formula": formula,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EditID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEdit, canonical), nil
}

// MustSnapshotDigest is like SnapshotDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSnapshotDigest(s Snapshot) string {
	d, err := SnapshotDigest(s)
	if err != nil {
		panic(err)
	}
	return d
}
