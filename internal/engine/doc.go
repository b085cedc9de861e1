// Package engine implements the recalc reactive calculation engine.
//
// Given an edit to one cell, the engine determines every affected cell,
// blocks circular references, recomputes values in a safe order and records
// the result as an undoable history entry.
//
// ARCHITECTURE:
//
// Components, leaves first:
//   - ExtractReferences: formula text → referenced cell ids
//   - IntroducesCycle: would a new edge close a cycle?
//   - Resolver: substitutes values and delegates arithmetic to an evaluator
//   - Propagator: check → compute → update edges → refresh dependents
//   - History: linear snapshot stack with a cursor
//   - Workbook: the serialised facade over all of the above
//
// Data flow:
//
//	Workbook.EditCell → Propagator.Commit(snapshot) → new snapshot
//	  → Journal.Append (optional) → History.Commit
//
// CRITICAL PATTERNS:
//
// Copy-on-write snapshots:
// Every component takes an immutable ir.Snapshot and returns a new one.
// Nothing the engine has handed out is ever modified.
//
// Values, not errors:
// Evaluation failures and cycles are stored as #ERROR / #CIRCULAR values.
// Errors are returned only for caller mistakes (bad ids, undo at the
// oldest entry) and journal failures.
//
// Deterministic order:
// Dependents are ordered slices and the refresh order is a stable
// topological sort, so identical inputs give identical snapshots.
//
// Stack safety:
// Graph walks use explicit work-lists; no recursion depth grows with the
// length of a dependency chain.
package engine
