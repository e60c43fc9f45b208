// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for domain errors. These allow errors.Is/As from callers.
var (
	// ErrValidation marks caller-input problems. The whole request is rejected.
	ErrValidation = errors.New("validation failed")
	// ErrComputation marks an internal defect in a single unit of work.
	ErrComputation = errors.New("computation failed")
	// ErrPanic marks a computation error recovered from a panic.
	ErrPanic = errors.New("panic")
)

// Kind enumerates validation failure reasons.
type Kind string

// Validation kinds.
const (
	KindEmptySequence        Kind = "empty_sequence"
	KindInvalidAlphabet      Kind = "invalid_alphabet"
	KindUnsupportedAlgorithm Kind = "unsupported_algorithm"
	KindUnsupportedMutation  Kind = "unsupported_mutation"
	KindOutOfRange           Kind = "out_of_range"
	KindInsufficientInput    Kind = "insufficient_input"
	KindInvalidInput         Kind = "invalid_input"
)

// ValidationError describes why a request was rejected.
type ValidationError struct {
	Kind    Kind
	Field   string // request field, when known
	Message string

	// Char and Position are set for KindInvalidAlphabet. Position is 1-based.
	Char     rune
	Position int
}

// Error implements error.
func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, msg)
	}
	return msg
}

// Unwrap lets errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation builds a ValidationError with a formatted message.
func NewValidation(kind Kind, field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// ComputationError reports an internal inconsistency while computing one unit.
type ComputationError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *ComputationError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + ErrComputation.Error()
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrComputation, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *ComputationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrComputation}
	}
	return []error{ErrComputation, e.Err}
}

// NewComputation builds a ComputationError with a formatted cause.
func NewComputation(op, format string, args ...any) *ComputationError {
	return &ComputationError{Op: op, Err: fmt.Errorf(format, args...)}
}

// IsValidation reports whether err rejects the whole request.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// KindOf returns the validation kind carried by err, or "" if err is not a
// validation error.
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

// WithField returns err with Field set when err is a ValidationError that
// does not name a field yet. Other errors are returned unchanged.
func WithField(err error, field string) error {
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "" {
		return err
	}
	cp := *ve
	cp.Field = field
	return &cp
}
