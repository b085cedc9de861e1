package engine

import "github.com/roach88/recalc/internal/ir"

// CellReader is the read side shared by ir.Snapshot and *ir.Builder.
type CellReader interface {
	Get(id ir.CellID) ir.Cell
}

// IntroducesCycle reports whether making editedCell depend on candidateParent
// would close a cycle in the dependency graph.
//
// It is true when candidateParent == editedCell (self-reference), or when
// candidateParent already depends on editedCell transitively, i.e. it is
// reachable from editedCell by following dependents edges.
//
// Example:
//
//	B1 = "=A1"        A1.dependents = [B1]
//	edit A1 = "=B1"   walk A1 → B1 == candidate ← CYCLE DETECTED
//
// The walk is an explicit-stack DFS with a visited set, so it terminates and
// stays stack-safe on deep chains even if a store were already cyclic.
func IntroducesCycle(editedCell, candidateParent ir.CellID, store CellReader) bool {
	if editedCell == candidateParent {
		return true
	}

	visited := map[ir.CellID]bool{editedCell: true}
	stack := []ir.CellID{editedCell}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		deps := store.Get(current).Dependents
		// Push in reverse so dependents are visited in recorded order.
		for i := len(deps) - 1; i >= 0; i-- {
			next := deps[i]
			if next == candidateParent {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// firstCycle returns the first reference of refs that would close a cycle
// for editedCell, and whether one was found.
func firstCycle(editedCell ir.CellID, refs []ir.CellID, store CellReader) (ir.CellID, bool) {
	for _, p := range refs {
		if IntroducesCycle(editedCell, p, store) {
			return p, true
		}
	}
	return "", false
}
