package engine

import (
	"log/slog"
	"slices"

	"github.com/roach88/recalc/internal/ir"
)

// Outcome describes what a commit did. It carries no state of its own; the
// returned snapshot is the only result that matters for correctness.
type Outcome struct {
	// Cell is the edited cell.
	Cell ir.CellID

	// Rejected is true when the edit was tagged #CIRCULAR.
	Rejected bool

	// CycleWith is the first reference that would have closed a cycle.
	CycleWith ir.CellID

	// Recomputed lists the transitive dependents refreshed, in evaluation order.
	Recomputed []ir.CellID
}

// Propagator applies a single-cell edit to a snapshot and refreshes every
// transitive dependent.
//
// Commit is a pure function of its inputs: the input snapshot is never
// modified, and identical inputs produce identical snapshots.
type Propagator struct {
	resolver *Resolver
	logger   *slog.Logger
}

// NewPropagator creates a Propagator using resolver for formula values.
// A nil logger discards diagnostics.
func NewPropagator(resolver *Resolver, logger *slog.Logger) *Propagator {
	if logger == nil {
		logger = discardLogger()
	}
	return &Propagator{resolver: resolver, logger: logger}
}

// CommitEdit returns the snapshot that results from setting editedCell's
// input to newFormula in store.
func (p *Propagator) CommitEdit(editedCell ir.CellID, newFormula string, store ir.Snapshot) ir.Snapshot {
	next, _ := p.Commit(editedCell, newFormula, store)
	return next
}

// Commit is CommitEdit that also reports what happened.
//
// Algorithm:
//  1. Cycle-check every distinct reference of newFormula against store.
//     On a hit, only editedCell's formula and value (#CIRCULAR) change.
//  2. Otherwise resolve the value, drop edges for cells the previously
//     accepted formula read and the new one does not, and add an edge from each
//     referenced cell (materialising placeholders) to editedCell.
//  3. Refresh the transitive dependents of editedCell in topological order,
//     running each through the same check / resolve / edge update.
func (p *Propagator) Commit(editedCell ir.CellID, newFormula string, store ir.Snapshot) (ir.Snapshot, Outcome) {
	out := Outcome{Cell: editedCell}
	work := store.Edit()

	if partner, rejected := p.apply(work, editedCell, newFormula); rejected {
		out.Rejected = true
		out.CycleWith = partner
		p.logger.Warn("edit rejected: circular reference",
			"cell", editedCell,
			"formula", newFormula,
			"cycle_with", partner,
		)
		return work.Snapshot(), out
	}

	order := refreshOrder(work, editedCell)
	for _, id := range order {
		formula := work.Get(id).Formula
		p.apply(work, id, formula)
		p.logger.Debug("recomputed dependent",
			"cell", id,
			"value", work.Get(id).Value.Text(),
		)
	}
	out.Recomputed = order

	return work.Snapshot(), out
}

// apply performs the single-cell step on the working copy. It returns the
// offending reference and true if the formula would close a cycle.
func (p *Propagator) apply(work *ir.Builder, id ir.CellID, formula string) (ir.CellID, bool) {
	refs := uniqueReferences(ExtractReferences(formula))
	old := work.Get(id)

	if partner, found := firstCycle(id, refs, work); found {
		work.Set(id, ir.Cell{
			Formula:    formula,
			Value:      ir.Errored(ir.TagCircular),
			Dependents: old.Dependents,
			Reads:      old.Reads,
		})
		return partner, true
	}

	value := p.resolver.Resolve(formula, work)

	// Prune against the edges actually recorded, not old.Formula: after a
	// rejected edit the two differ.
	for _, stale := range old.Reads {
		if slices.Contains(refs, stale) {
			continue
		}
		if c, ok := work.Lookup(stale); ok && c.HasDependent(id) {
			work.Set(stale, c.WithoutDependent(id))
		}
	}

	var reads []ir.CellID
	if len(refs) > 0 {
		reads = refs
	}
	work.Set(id, ir.Cell{
		Formula:    formula,
		Value:      value,
		Dependents: old.Dependents,
		Reads:      reads,
	})

	for _, ref := range refs {
		parent := work.Materialize(ref)
		if !parent.HasDependent(id) {
			work.Set(ref, parent.WithDependent(id))
		}
	}
	return "", false
}

// refreshOrder returns the transitive dependents of root (excluding root)
// ordered so that every cell follows the cells its formula reads.
//
// Discovery is an explicit-stack walk of dependents edges; ordering is Kahn's
// algorithm over formula references restricted to the affected set, with
// ties broken by discovery order. Cells left over by a reference cycle
// (only possible among cells already tagged #CIRCULAR) are appended in
// discovery order; their own cycle check tags them again.
func refreshOrder(store CellReader, root ir.CellID) []ir.CellID {
	var discovered []ir.CellID
	affected := map[ir.CellID]bool{}
	visited := map[ir.CellID]bool{root: true}

	stack := []ir.CellID{root}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		deps := store.Get(current).Dependents
		for i := len(deps) - 1; i >= 0; i-- {
			next := deps[i]
			if visited[next] {
				continue
			}
			visited[next] = true
			affected[next] = true
			discovered = append(discovered, next)
			stack = append(stack, next)
		}
	}
	if len(discovered) < 2 {
		return discovered
	}

	indegree := make(map[ir.CellID]int, len(discovered))
	successors := make(map[ir.CellID][]ir.CellID, len(discovered))
	for _, id := range discovered {
		for _, ref := range uniqueReferences(ExtractReferences(store.Get(id).Formula)) {
			if ref == id || !affected[ref] {
				continue
			}
			indegree[id]++
			successors[ref] = append(successors[ref], id)
		}
	}

	order := make([]ir.CellID, 0, len(discovered))
	placed := make(map[ir.CellID]bool, len(discovered))
	var queue []ir.CellID
	for _, id := range discovered {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		placed[id] = true
		for _, succ := range successors[id] {
			indegree[succ]--
			if indegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	for _, id := range discovered {
		if !placed[id] {
			order = append(order, id)
		}
	}
	return order
}
