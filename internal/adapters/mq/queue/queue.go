// Package queue defines the contract for enqueuing and consuming work units.
//
// The in-memory implementation is a bounded buffered channel; a full queue
// rejects new units immediately instead of blocking the caller.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
)

// Unit represents the payload type flowing through the queue.
type Unit = model.Unit

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a unit to the queue. It fails with ErrFull when the queue
	// is at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, u Unit) error

	// Dequeue returns a channel that will receive units as they become available.
	// The channel will be closed when the queue is closed and drained. A unit
	// taken off the queue after ctx ends is reported with ErrUndelivered.
	Dequeue(ctx context.Context) <-chan Unit

	// Drain hands every unit still buffered in a closed queue to fn and
	// returns how many there were.
	Drain(fn func(Unit)) int

	// Len returns the current number of queued units.
	Len(ctx context.Context) int

	// Cap returns the queue capacity.
	Cap() int

	// Close gracefully shuts down the queue.
	// After closing, no new units can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	units    chan Unit
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.units = make(chan Unit, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a unit to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, u Unit) error { //nolint:gocritic // hugeParam: Unit is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	u.Enqueued = time.Now()
	select {
	case q.units <- u:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that will receive units as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Unit {
	out := make(chan Unit)
	go func() {
		defer close(out)
		for u := range q.units {
			select {
			case out <- u:
				metrics.RecordQueueDequeue()
				metrics.RecordQueueProcessingLatency(float64(time.Since(u.Enqueued).Microseconds()) / 1000)
				q.updateGauges()
			case <-ctx.Done():
				undelivered(u, ctx.Err())
				return
			}
		}
	}()
	return out
}

func undelivered(u Unit, cause error) { //nolint:gocritic // hugeParam: Unit is passed by value for channel semantics
	metrics.RecordErrorByComponent("queue", "undelivered")
	if u.Done != nil {
		u.Done(fmt.Errorf("%w: %w", ErrUndelivered, cause))
	}
}

// Drain hands every unit still buffered in a closed queue to fn. An open
// queue is left untouched.
func (q *InMemoryQueue) Drain(fn func(Unit)) int {
	if !q.IsClosed() {
		return 0
	}
	n := 0
	for u := range q.units {
		fn(u)
		n++
	}
	q.updateGauges()
	return n
}

// Len returns the current number of queued units.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return q.updateGauges()
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }

func (q *InMemoryQueue) updateGauges() int {
	size := len(q.units)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.units)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
