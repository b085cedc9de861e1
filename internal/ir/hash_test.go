package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() Snapshot {
	return NewSnapshot(map[CellID]Cell{
		"A1": {Formula: "5", Value: Literal("5"), Dependents: []CellID{"B1"}},
		"B1": {Formula: "=A1+1", Value: Number(6)},
	})
}

func TestSnapshotDigest_Deterministic(t *testing.T) {
	d1, err := SnapshotDigest(sampleSnapshot())
	require.NoError(t, err)
	d2, err := SnapshotDigest(sampleSnapshot())
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64, "hex sha256")
}

func TestSnapshotDigest_DistinguishesKinds(t *testing.T) {
	a := NewSnapshot(map[CellID]Cell{"A1": {Formula: "=5", Value: Number(5)}})
	b := NewSnapshot(map[CellID]Cell{"A1": {Formula: "=5", Value: Literal("5")}})
	assert.NotEqual(t, MustSnapshotDigest(a), MustSnapshotDigest(b))
}

func TestSnapshotDigest_DependentOrderMatters(t *testing.T) {
	a := NewSnapshot(map[CellID]Cell{"A1": {Value: Empty, Dependents: []CellID{"B1", "C1"}}})
	b := NewSnapshot(map[CellID]Cell{"A1": {Value: Empty, Dependents: []CellID{"C1", "B1"}}})
	assert.NotEqual(t, MustSnapshotDigest(a), MustSnapshotDigest(b))
}

func TestSnapshotDigest_EmptyVsPlaceholder(t *testing.T) {
	withPlaceholder := NewSnapshot(map[CellID]Cell{"Z99": EmptyCell()})
	assert.NotEqual(t, MustSnapshotDigest(EmptySnapshot()), MustSnapshotDigest(withPlaceholder))
}

func TestCanonicalCell(t *testing.T) {
	c := Cell{Formula: "=A1", Value: Errored(TagCircular), Dependents: []CellID{"B1"}, Reads: []CellID{"C1"}}
	out, err := MarshalCanonical(CanonicalCell(c))
	require.NoError(t, err)
	assert.Equal(t, `{"dependents":["B1"],"formula":"=A1","reads":["C1"],"value":{"kind":"error","text":"#CIRCULAR"}}`, string(out))
}

func TestSnapshotDigest_ReadsMatter(t *testing.T) {
	a := NewSnapshot(map[CellID]Cell{"A1": {Formula: "=B1", Value: Errored(TagCircular)}})
	b := NewSnapshot(map[CellID]Cell{"A1": {Formula: "=B1", Value: Errored(TagCircular), Reads: []CellID{"C1"}}})
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, MustSnapshotDigest(a), MustSnapshotDigest(b))
}

func TestSnapshotDigest_NegativeZero(t *testing.T) {
	negZero := Number(math.Copysign(0, -1))
	a := NewSnapshot(map[CellID]Cell{"A1": {Formula: "=0*-1", Value: negZero}})
	b := NewSnapshot(map[CellID]Cell{"A1": {Formula: "=0*-1", Value: Number(0)}})
	require.True(t, a.Equal(b))
	assert.Equal(t, MustSnapshotDigest(a), MustSnapshotDigest(b))
}

func TestSnapshotDigest_InvalidUTF8(t *testing.T) {
	a := NewSnapshot(map[CellID]Cell{"A1": {Formula: "\xff", Value: Literal("\xff")}})
	_, err := SnapshotDigest(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid UTF-8")
}

func TestEditID_Stable(t *testing.T) {
	a, err := EditID("session-1", 3, "A1", "=B1")
	require.NoError(t, err)
	b, err := EditID("session-1", 3, "A1", "=B1")
	require.NoError(t, err)
	c, err := EditID("session-1", 4, "A1", "=B1")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
