package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("queue full")
	ErrClosed = errors.New("queue closed")

	// ErrUndelivered is reported to a unit taken off the queue whose
	// consumer went away before receiving it.
	ErrUndelivered = errors.New("unit not delivered")
)
