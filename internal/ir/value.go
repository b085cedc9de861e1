package ir

import (
	"math"
	"strconv"
	"strings"
)

// Value is a sealed interface representing the computed content of a cell.
// Only Number, Literal and ErrorValue implement this.
type Value interface {
	value() // Sealed - only these types implement it

	// Text returns the display form of the value.
	Text() string
}

// Number is a numeric formula result.
type Number float64

func (Number) value() {}

// Text renders the number as its shortest round-trip decimal.
// Magnitudes of 1e21 and above fall back to exponent notation.
func (n Number) Text() string {
	return FormatNumber(float64(n))
}

// Literal is raw user input that is not a formula. It is passed through
// unchanged, with no numeric coercion.
type Literal string

func (Literal) value() {}

// Text returns the literal unchanged.
func (l Literal) Text() string {
	return string(l)
}

// ErrorTag names a terminal, display-only error state.
type ErrorTag string

const (
	// TagError marks a formula whose expression failed to evaluate or that
	// reads a cell that is itself in an error state.
	TagError ErrorTag = "#ERROR"

	// TagCircular marks a formula whose references would close a cycle.
	TagCircular ErrorTag = "#CIRCULAR"
)

// ErrorValue is a cell value carrying an error tag.
type ErrorValue struct {
	Tag ErrorTag
}

func (ErrorValue) value() {}

// Text returns the tag literally (e.g. "#CIRCULAR").
func (e ErrorValue) Text() string {
	return string(e.Tag)
}

// Empty is the value of an implicit or placeholder cell.
var Empty Value = Literal("")

// Errored returns the ErrorValue for the given tag.
func Errored(tag ErrorTag) ErrorValue {
	return ErrorValue{Tag: tag}
}

// IsError reports whether v is an ErrorValue of any tag.
func IsError(v Value) bool {
	_, ok := v.(ErrorValue)
	return ok
}

// HasTag reports whether v is an ErrorValue with the given tag.
func HasTag(v Value, tag ErrorTag) bool {
	e, ok := v.(ErrorValue)
	return ok && e.Tag == tag
}

// Operand returns the text substituted for a reference to a cell holding v.
//
// Numbers render as decimals (negative numbers parenthesised so "2-A1" stays
// well formed). A literal that parses as a decimal number substitutes in the
// same canonical form, so "007" reads as 7; other literals substitute
// textually, and the empty literal reads as 0. The stored value is never
// changed. Error values have no operand; callers must short-circuit on them
// before substituting.
func Operand(v Value) string {
	switch val := v.(type) {
	case Number:
		return numberOperand(float64(val))
	case Literal:
		if val == "" {
			return "0"
		}
		if f, ok := decimalLiteral(string(val)); ok {
			return numberOperand(f)
		}
		return string(val)
	default:
		return ""
	}
}

func numberOperand(f float64) string {
	text := FormatNumber(f)
	if f < 0 {
		return "(" + text + ")"
	}
	return text
}

// decimalLiteral parses a finite decimal literal such as "007" or "-1.50".
// Hex floats and special values stay textual.
func decimalLiteral(s string) (float64, bool) {
	if strings.ContainsAny(s, "xXpP") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// FormatNumber renders f as the shortest decimal that round-trips.
// Negative zero renders as "0".
func FormatNumber(f float64) string {
	if f == 0 {
		f = 0
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
