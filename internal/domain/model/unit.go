package model

import (
	"context"
	"fmt"
	"time"
)

// UnitFunc computes the unit at index. Units own their inputs and outputs;
// they never share mutable state with siblings.
type UnitFunc func(ctx context.Context, index int) error

// Executor runs n independent units. The returned slice holds each unit's
// error by index. The second return value is non-nil only when the dispatch
// itself failed (backpressure, cancellation); per-unit failures never abort
// siblings.
type Executor interface {
	Execute(ctx context.Context, n int, unit UnitFunc) ([]error, error)
}

// Unit is the payload flowing through the work queue.
type Unit struct {
	ID    string // unique id for logging
	JobID string // simulation or batch the unit belongs to
	Index int

	// Enqueued is stamped by the queue.
	Enqueued time.Time

	// Run executes the unit with the worker's context; units carry their own
	// request context. Done receives its outcome exactly once.
	Run  func(ctx context.Context) error
	Done func(err error)
}

// Guard runs fn and converts a panic into a ComputationError so one broken
// unit cannot take down the worker or its siblings.
func Guard(ctx context.Context, op string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ComputationError{Op: op, Err: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()
	return fn(ctx)
}

// Sequential is an Executor that runs units inline, in index order.
type Sequential struct{}

// Execute implements Executor.
func (Sequential) Execute(ctx context.Context, n int, unit UnitFunc) ([]error, error) {
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return errs, err
		}
		errs[i] = Guard(ctx, "unit", func(ctx context.Context) error {
			return unit(ctx, i)
		})
	}
	return errs, nil
}
