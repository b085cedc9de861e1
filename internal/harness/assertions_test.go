package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recalc/internal/engine"
	"github.com/roach88/recalc/internal/evaluator"
	"github.com/roach88/recalc/internal/ir"
)

func resultWith(t *testing.T, edits ...[2]string) *Result {
	t.Helper()
	p := engine.NewPropagator(engine.NewResolver(evaluator.NewCUE(), nil), nil)
	s := ir.EmptySnapshot()
	for _, e := range edits {
		s = p.CommitEdit(ir.CellID(e[0]), e[1], s)
	}
	r := NewResult()
	r.Final = s
	r.CanUndo = true
	return r
}

func TestEvaluateAssertions(t *testing.T) {
	r := resultWith(t,
		[2]string{"A1", "5"},
		[2]string{"B1", "=A1+1"},
		[2]string{"C1", "=Z9/0"},
	)

	tests := []struct {
		name      string
		assertion Assertion
		wantFail  string
	}{
		{"value ok", Assertion{Type: AssertCellValue, Cell: "B1", Text: strPtr("6")}, ""},
		{"value lower-case id", Assertion{Type: AssertCellValue, Cell: "b1", Text: strPtr("6")}, ""},
		{"value mismatch", Assertion{Type: AssertCellValue, Cell: "B1", Text: strPtr("7")}, `B1 displays "7"`},
		{"value absent cell", Assertion{Type: AssertCellValue, Cell: "Q1", Text: strPtr("")}, ""},
		{"formula ok", Assertion{Type: AssertCellFormula, Cell: "B1", Formula: strPtr("=A1+1")}, ""},
		{"formula mismatch", Assertion{Type: AssertCellFormula, Cell: "B1", Formula: strPtr("=A1")}, `B1 formula "=A1"`},
		{"is_error ok", Assertion{Type: AssertIsError, Cell: "C1", Expect: boolPtr(true)}, ""},
		{"is_error mismatch", Assertion{Type: AssertIsError, Cell: "B1", Expect: boolPtr(true)}, "B1 is_error = true"},
		{"dependents ok", Assertion{Type: AssertDependents, Cell: "A1", Dependents: []string{"b1"}}, ""},
		{"dependents none", Assertion{Type: AssertDependents, Cell: "B1"}, ""},
		{"dependents mismatch", Assertion{Type: AssertDependents, Cell: "A1", Dependents: []string{"C1"}}, "A1 dependents [C1]"},
		{"materialized placeholder", Assertion{Type: AssertMaterialized, Cell: "Z9", Expect: boolPtr(true)}, ""},
		{"materialized absent", Assertion{Type: AssertMaterialized, Cell: "Q1", Expect: boolPtr(true)}, "Q1 materialized = true"},
		{"can_undo ok", Assertion{Type: AssertCanUndo, Expect: boolPtr(true)}, ""},
		{"can_redo mismatch", Assertion{Type: AssertCanRedo, Expect: boolPtr(true)}, "can_redo = true"},
		{"invalid cell id", Assertion{Type: AssertCellValue, Cell: "9Z", Text: strPtr("")}, "a valid cell id"},
		{"unknown type", Assertion{Type: "final_state"}, `unknown assertion type "final_state"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions(r, []Assertion{tt.assertion})
			if tt.wantFail == "" {
				assert.Empty(t, failures)
				return
			}
			require.Len(t, failures, 1)
			assert.Contains(t, failures[0], tt.wantFail)
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertCellValue,
		Expected: `A1 displays "1"`,
		Actual:   `"2"`,
		Trace: []TraceEvent{
			{Op: "edit", Cell: "A1", Formula: "2", Seq: 1, Cursor: 1},
			{Op: "undo", Seq: 2, Cursor: 0},
			{Op: "undo", Error: "NOTHING_TO_UNDO"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: cell_value")
	assert.Contains(t, msg, "[1] edit A1 2 (seq 1)")
	assert.Contains(t, msg, "[2] undo -> cursor 0 (seq 2)")
	assert.Contains(t, msg, "NOTHING_TO_UNDO")
}
