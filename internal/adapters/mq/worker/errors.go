package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	// ErrBackpressure means the queue was full while the dispatch had no
	// unit of its own in flight to wait for.
	ErrBackpressure = errors.New("work queue full")
	// ErrStopped means the pool is not running or stopped before a unit ran.
	ErrStopped = errors.New("worker pool stopped")
)
