package evaluator

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/parser"
)

// Evaluator evaluates a pure-arithmetic expression to a number.
type Evaluator interface {
	Evaluate(expr string) (float64, error)
}

// Func adapts an ordinary function to the Evaluator interface.
type Func func(expr string) (float64, error)

// Evaluate calls f(expr).
func (f Func) Evaluate(expr string) (float64, error) {
	return f(expr)
}

// arithmeticChars is the only input CUE is allowed to see. Letters other
// than the exponent marker would let CUE resolve identifiers or builtins.
const arithmeticChars = "0123456789.+-*/()eE \t"

// CUE evaluates arithmetic with the CUE runtime.
//
// A cue.Context is not safe for concurrent use, so calls are serialised.
type CUE struct {
	mu  sync.Mutex
	ctx *cue.Context
}

// NewCUE creates a CUE-backed evaluator.
func NewCUE() *CUE {
	return &CUE{ctx: cuecontext.New()}
}

// Evaluate parses and evaluates expr.
//
// Returns ParseError for characters outside the arithmetic alphabet or CUE
// syntax errors, and MathError for evaluation failures or non-numeric or
// non-finite results.
func (c *CUE) Evaluate(expr string) (float64, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, &EvalError{Kind: ParseError, Expr: expr, Err: errors.New("empty expression")}
	}
	if i := strings.IndexFunc(expr, func(r rune) bool { return !strings.ContainsRune(arithmeticChars, r) }); i >= 0 {
		return 0, &EvalError{Kind: ParseError, Expr: expr, Err: fmt.Errorf("unexpected character %q at offset %d", expr[i], i)}
	}

	x, err := parser.ParseExpr("formula", expr)
	if err != nil {
		return 0, &EvalError{Kind: ParseError, Expr: expr, Err: formatCUEError(err)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.ctx.BuildExpr(x)
	if err := v.Err(); err != nil {
		return 0, &EvalError{Kind: MathError, Expr: expr, Err: formatCUEError(err)}
	}
	switch v.Kind() {
	case cue.IntKind, cue.FloatKind:
	default:
		return 0, &EvalError{Kind: MathError, Expr: expr, Err: fmt.Errorf("result is %s, not a number", v.Kind())}
	}

	f, err := v.Float64()
	if err != nil {
		return 0, &EvalError{Kind: MathError, Expr: expr, Err: formatCUEError(err)}
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, &EvalError{Kind: MathError, Expr: expr, Err: errors.New("result is not finite")}
	}
	return f, nil
}

// formatCUEError flattens a CUE error list to its first message.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	return errors.New(errs[0].Error())
}
