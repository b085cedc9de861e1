package evaluator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCUE_Evaluate(t *testing.T) {
	ev := NewCUE()

	tests := []struct {
		expr     string
		expected float64
	}{
		{"5+1", 6},
		{"2*3+4", 10},
		{"2*(3+4)", 14},
		{"7/2", 3.5},
		{"10-(-3)", 13},
		{"-4", -4},
		{"0.1+0.2", 0.3},
		{" 1 + 1 ", 2},
		{"1e3", 1000},
		{"42", 42},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ev.Evaluate(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestCUE_ParseErrors(t *testing.T) {
	ev := NewCUE()

	for _, expr := range []string{"", "   ", "5+", "(1", "2**", "abc+1", `"x"+1`, "[1,2]"} {
		t.Run(expr, func(t *testing.T) {
			_, err := ev.Evaluate(expr)
			require.Error(t, err)
			assert.True(t, IsParseError(err), "expected parse error, got %v", err)
		})
	}
}

func TestCUE_MathErrors(t *testing.T) {
	ev := NewCUE()

	for _, expr := range []string{"1/0", "5/(2-2)"} {
		t.Run(expr, func(t *testing.T) {
			_, err := ev.Evaluate(expr)
			require.Error(t, err)
			assert.True(t, IsMathError(err), "expected math error, got %v", err)
		})
	}
}

func TestCUE_Deterministic(t *testing.T) {
	ev := NewCUE()
	a, err := ev.Evaluate("1/3")
	require.NoError(t, err)
	b, err := ev.Evaluate("1/3")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFunc_Adapter(t *testing.T) {
	var seen string
	ev := Func(func(expr string) (float64, error) {
		seen = expr
		return 7, nil
	})

	got, err := ev.Evaluate("3+4")
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
	assert.Equal(t, "3+4", seen)
}

func TestEvalError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", &EvalError{Kind: MathError, Expr: "1/0", Err: inner})

	assert.True(t, IsMathError(err))
	assert.False(t, IsParseError(err))
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "MATH_ERROR")
}
