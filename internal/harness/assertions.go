package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/recalc/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			switch {
			case event.Failed():
				fmt.Fprintf(&buf, "  [%d] %s %s %s -> %s\n", i+1, event.Op, event.Cell, event.Formula, event.Error)
			case event.Op == "edit":
				fmt.Fprintf(&buf, "  [%d] edit %s %s (seq %d)\n", i+1, event.Cell, event.Formula, event.Seq)
			default:
				fmt.Fprintf(&buf, "  [%d] %s -> cursor %d (seq %d)\n", i+1, event.Op, event.Cursor, event.Seq)
			}
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluateAssertion(result *Result, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: result.Trace}
	}

	var (
		id   ir.CellID
		cell ir.Cell
		ok   bool
	)
	if a.Cell != "" {
		var err error
		id, err = ir.ParseCellID(a.Cell)
		if err != nil {
			return fail("a valid cell id", fmt.Sprintf("%q: %v", a.Cell, err))
		}
		cell = result.Final.Get(id)
		_, ok = result.Final.Lookup(id)
	}

	switch a.Type {
	case AssertCellValue:
		if got := cell.Value.Text(); got != *a.Text {
			return fail(fmt.Sprintf("%s displays %q", id, *a.Text), fmt.Sprintf("%q", got))
		}
	case AssertCellFormula:
		if cell.Formula != *a.Formula {
			return fail(fmt.Sprintf("%s formula %q", id, *a.Formula), fmt.Sprintf("%q", cell.Formula))
		}
	case AssertIsError:
		if got := ir.IsError(cell.Value); got != *a.Expect {
			return fail(fmt.Sprintf("%s is_error = %t", id, *a.Expect), fmt.Sprintf("is_error = %t (%s)", got, cell.Value.Text()))
		}
	case AssertDependents:
		want := make([]ir.CellID, len(a.Dependents))
		for i, d := range a.Dependents {
			want[i] = ir.CellID(strings.ToUpper(d))
		}
		if !slices.Equal(want, cell.Dependents) && (len(want) != 0 || len(cell.Dependents) != 0) {
			return fail(fmt.Sprintf("%s dependents %v", id, want), fmt.Sprintf("%v", cell.Dependents))
		}
	case AssertMaterialized:
		if ok != *a.Expect {
			return fail(fmt.Sprintf("%s materialized = %t", id, *a.Expect), fmt.Sprintf("materialized = %t", ok))
		}
	case AssertCanUndo:
		if result.CanUndo != *a.Expect {
			return fail(fmt.Sprintf("can_undo = %t", *a.Expect), fmt.Sprintf("can_undo = %t", result.CanUndo))
		}
	case AssertCanRedo:
		if result.CanRedo != *a.Expect {
			return fail(fmt.Sprintf("can_redo = %t", *a.Expect), fmt.Sprintf("can_redo = %t", result.CanRedo))
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
