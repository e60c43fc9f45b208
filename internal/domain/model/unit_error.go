package model

import (
	"context"
	"errors"
)

// UnitError is the wire form of a per-unit failure inside a batch or
// simulation response.
type UnitError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Codes for failures that are not validation kinds.
const (
	CodeComputation = "computation_error"
	CodeCancelled   = "cancelled"
	CodeInternal    = "internal_error"
)

// NewUnitError describes err for a response entry. It returns nil for nil.
func NewUnitError(err error) *UnitError {
	if err == nil {
		return nil
	}
	return &UnitError{Code: ErrorCode(err), Message: err.Error()}
}

// ErrorCode classifies err into a stable, machine-readable code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return string(KindOf(err))
	case errors.Is(err, ErrComputation):
		return CodeComputation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCancelled
	default:
		return CodeInternal
	}
}
