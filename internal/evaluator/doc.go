// Package evaluator provides the arithmetic evaluation capability used by the
// recalculation engine.
//
// The engine substitutes cell values into a formula and hands the resulting
// pure-arithmetic string to an Evaluator. The evaluator owns operator
// precedence, parsing and numeric semantics; the engine never does.
//
// Contract:
//   - Evaluate(expr) returns a number, or an *EvalError with Kind ParseError
//     or MathError
//   - No side effects; safe to call repeatedly with the same input
//
// The default implementation, CUE, compiles the expression with the CUE
// language runtime (arbitrary-precision decimal arithmetic) and reads back a
// float64.
package evaluator
