package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotStarted is returned by operations called before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrSequenceNotFound is returned when a sequence id does not resolve.
	ErrSequenceNotFound = errors.New("sequence not found")
)
