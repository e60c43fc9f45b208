package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/algobio/dnacore/internal/domain/model"
)

func unit(id string) model.Unit {
	return model.Unit{ID: id, Run: func(context.Context) error { return nil }}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if c := q.Cap(); c != 2 {
		t.Errorf("expected capacity 2, got %d", c)
	}

	if err := q.Enqueue(ctx, unit("u1")); err != nil {
		t.Fatalf("expected enqueue to succeed: %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != "u1" {
		t.Errorf("expected u1, got %v", got.ID)
	}
	if got.Enqueued.IsZero() {
		t.Error("expected enqueue time to be stamped")
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for _, id := range []string{"u1", "u2"} {
		if err := q.Enqueue(ctx, unit(id)); err != nil {
			t.Fatalf("expected enqueue to succeed: %v", err)
		}
	}
	if err := q.Enqueue(ctx, unit("u3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, unit("u1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	const producers, perProducer = 8, 50
	q := NewInMemoryQueue(WithCapacity(producers * perProducer))
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := q.Enqueue(ctx, unit(fmt.Sprintf("%d-%d", p, i))); err != nil {
					t.Errorf("enqueue failed: %v", err)
				}
			}
		}(p)
	}
	wg.Wait()

	if l := q.Len(ctx); l != producers*perProducer {
		t.Fatalf("expected %d queued, got %d", producers*perProducer, l)
	}

	_ = q.Close()
	seen := 0
	for range q.Dequeue(ctx) {
		seen++
	}
	if seen != producers*perProducer {
		t.Errorf("expected to drain %d units, got %d", producers*perProducer, seen)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if err := q.Enqueue(ctx, unit("u1")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if err := q.Enqueue(ctx, unit("u2")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	ch := q.Dequeue(ctx)
	select {
	case u, ok := <-ch:
		if !ok || u.ID != "u1" {
			t.Errorf("expected buffered unit u1, got %v (ok=%v)", u.ID, ok)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out draining closed queue")
	}
	if _, ok := <-ch; ok {
		t.Error("expected dequeue channel to close after drain")
	}
}

func TestInMemoryQueue_Drain(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		if err := q.Enqueue(ctx, unit(id)); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}
	if n := q.Drain(func(Unit) {}); n != 0 {
		t.Errorf("expected an open queue to be left alone, drained %d", n)
	}

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	var ids []string
	if n := q.Drain(func(u Unit) { ids = append(ids, u.ID) }); n != 3 {
		t.Errorf("expected 3 drained units, got %d", n)
	}
	if fmt.Sprint(ids) != "[u1 u2 u3]" {
		t.Errorf("expected FIFO drain order, got %v", ids)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected empty queue after drain, got %d", l)
	}
}

func TestInMemoryQueue_UndeliveredUnit(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	reported := make(chan error, 1)
	u := unit("u1")
	u.Done = func(err error) { reported <- err }
	if err := q.Enqueue(context.Background(), u); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	_ = q.Dequeue(ctx) // nobody receives
	cancel()

	select {
	case err := <-reported:
		if !errors.Is(err, ErrUndelivered) || !errors.Is(err, context.Canceled) {
			t.Errorf("expected ErrUndelivered wrapping context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("unit taken off the queue was never reported")
	}
}
