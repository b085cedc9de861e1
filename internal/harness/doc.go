// Package harness runs YAML workbook scenarios and compares their traces
// against golden files.
//
// A scenario is a list of steps (edit, undo, redo) applied to a fresh
// Workbook, followed by assertions on the final snapshot:
//
//	name: literal_then_formula
//	description: "B1 reads A1"
//	session: scenario-literal-then-formula
//	steps:
//	  - edit: {cell: A1, formula: "5"}
//	  - edit: {cell: B1, formula: "=A1+1"}
//	assertions:
//	  - type: cell_value
//	    cell: B1
//	    text: "6"
//
// Each run journals into a private in-memory store and replays the session
// afterwards, so every scenario also checks that the engine is
// deterministic. Session ids and seq values come from internal/testutil, so
// the trace of a scenario is byte-identical across runs.
package harness
