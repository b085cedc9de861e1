package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/recalc/internal/evaluator"
	"github.com/roach88/recalc/internal/ir"
)

// Resolver computes the value of a formula against a cell store.
//
// It is the boundary to the external evaluator: every evaluator failure is
// mapped to the #ERROR tag and Resolve never returns an error.
type Resolver struct {
	eval   evaluator.Evaluator
	logger *slog.Logger
}

// NewResolver creates a Resolver delegating arithmetic to eval.
// A nil logger discards diagnostics.
func NewResolver(eval evaluator.Evaluator, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = discardLogger()
	}
	return &Resolver{eval: eval, logger: logger}
}

// Resolve returns the value of formula.
//
//   - Literals (no leading "=") are returned unchanged as ir.Literal.
//   - If any referenced cell holds #ERROR or #CIRCULAR the result is #ERROR
//     and the evaluator is not called (poisoning).
//   - Otherwise each reference is replaced textually by its value (missing
//     or empty cells read as 0) and the evaluator's result becomes an ir.Number.
func (r *Resolver) Resolve(formula string, store CellReader) ir.Value {
	if !ir.IsFormula(formula) {
		return ir.Literal(formula)
	}

	for _, ref := range uniqueReferences(ExtractReferences(formula)) {
		if ir.IsError(store.Get(ref).Value) {
			r.logger.Debug("formula poisoned by upstream error",
				"reference", ref,
				"upstream", store.Get(ref).Value.Text(),
			)
			return ir.Errored(ir.TagError)
		}
	}

	expr := substituteReferences(formula[1:], func(id ir.CellID) string {
		return ir.Operand(store.Get(id).Value)
	})

	n, err := r.evaluate(expr)
	if err != nil {
		r.logger.Debug("evaluation failed", "expr", expr, "error", err)
		return ir.Errored(ir.TagError)
	}
	return ir.Number(n)
}

// evaluate calls the evaluator, converting a panic into an error.
func (r *Resolver) evaluate(expr string) (n float64, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("evaluator panic: %v", p)
		}
	}()
	return r.eval.Evaluate(expr)
}
