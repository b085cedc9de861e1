package engine

import (
	"errors"
	"fmt"
)

// EditError represents a caller mistake rejected by the workbook.
//
// Cell content never produces an EditError: evaluation failures and cycles
// are values (#ERROR, #CIRCULAR), not errors.
type EditError struct {
	// Code identifies the error category.
	Code EditErrorCode

	// Message is a human-readable description.
	Message string

	// Cell identifies the affected cell, if any.
	Cell string
}

// EditErrorCode categorizes edit errors.
type EditErrorCode string

const (
	// ErrCodeInvalidCellID indicates an id that is not letters followed by digits.
	ErrCodeInvalidCellID EditErrorCode = "INVALID_CELL_ID"

	// ErrCodeNothingToUndo indicates undo at the oldest history entry.
	ErrCodeNothingToUndo EditErrorCode = "NOTHING_TO_UNDO"

	// ErrCodeNothingToRedo indicates redo at the newest history entry.
	ErrCodeNothingToRedo EditErrorCode = "NOTHING_TO_REDO"
)

// Error implements the error interface.
func (e *EditError) Error() string {
	if e.Cell != "" {
		return fmt.Sprintf("%s: %s (cell=%s)", e.Code, e.Message, e.Cell)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNothingToUndo returns true if the error reports an undo at cursor 0.
// Uses errors.As to handle wrapped errors.
func IsNothingToUndo(err error) bool {
	return hasCode(err, ErrCodeNothingToUndo)
}

// IsNothingToRedo returns true if the error reports a redo at the last entry.
// Uses errors.As to handle wrapped errors.
func IsNothingToRedo(err error) bool {
	return hasCode(err, ErrCodeNothingToRedo)
}

// IsInvalidCellID returns true if the error reports a malformed cell id.
func IsInvalidCellID(err error) bool {
	return hasCode(err, ErrCodeInvalidCellID)
}

func hasCode(err error, code EditErrorCode) bool {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

var (
	errNothingToUndo = &EditError{Code: ErrCodeNothingToUndo, Message: "nothing to undo"}
	errNothingToRedo = &EditError{Code: ErrCodeNothingToRedo, Message: "nothing to redo"}
)

// NewInvalidCellIDError creates an EditError for a malformed cell id.
func NewInvalidCellIDError(raw string, cause error) *EditError {
	return &EditError{
		Code:    ErrCodeInvalidCellID,
		Message: cause.Error(),
		Cell:    raw,
	}
}
