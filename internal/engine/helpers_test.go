package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/recalc/internal/evaluator"
	"github.com/roach88/recalc/internal/ir"
)

// newTestPropagator returns a propagator backed by the CUE evaluator.
func newTestPropagator() *Propagator {
	return NewPropagator(NewResolver(evaluator.NewCUE(), nil), nil)
}

// applyEdits commits edits in order, each given as {cell, formula}.
func applyEdits(t *testing.T, p *Propagator, s ir.Snapshot, edits ...[2]string) ir.Snapshot {
	t.Helper()
	for _, e := range edits {
		id, err := ir.ParseCellID(e[0])
		require.NoError(t, err)
		s = p.CommitEdit(id, e[1], s)
	}
	return s
}

// assertAcyclic fails if any cell can reach itself through dependents edges.
func assertAcyclic(t *testing.T, s ir.Snapshot) {
	t.Helper()
	for _, id := range s.IDs() {
		visited := map[ir.CellID]bool{}
		stack := append([]ir.CellID(nil), s.Get(id).Dependents...)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			require.NotEqual(t, id, cur, "cell %s reaches itself through dependents", id)
			if visited[cur] {
				continue
			}
			visited[cur] = true
			stack = append(stack, s.Get(cur).Dependents...)
		}
	}
}

// assertEdgesConsistent fails unless every reference of every committed,
// non-circular formula is mirrored by a dependents edge.
func assertEdgesConsistent(t *testing.T, s ir.Snapshot) {
	t.Helper()
	for _, id := range s.IDs() {
		c := s.Get(id)
		if ir.HasTag(c.Value, ir.TagCircular) {
			continue
		}
		for _, ref := range ExtractReferences(c.Formula) {
			require.True(t, s.Get(ref).HasDependent(id), "%s references %s but is not in its dependents", id, ref)
		}
	}
}
