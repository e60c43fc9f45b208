// Package worker runs queued work units on a fixed set of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/algobio/dnacore/internal/adapters/mq/queue"
	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/pkg/logger"
	"github.com/algobio/dnacore/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// Unit abstracts what workers read off the queue.
type Unit = model.Unit

// Source defines how workers receive units.
type Source interface {
	Dequeue(ctx context.Context) <-chan Unit
}

// Queue is what the pool needs from its queue.
type Queue interface {
	Source
	Enqueue(ctx context.Context, u Unit) error
	Len(ctx context.Context) int
	Cap() int
	Close() error
	Drain(fn func(Unit)) int
}

// Worker runs units until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the source closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current unit.
	Shutdown(ctx context.Context) error
}

type activeCounter struct{ n atomic.Int64 }

func (c *activeCounter) add(d int64) {
	if c == nil {
		return
	}
	metrics.UpdateWorkerActiveCount(int(c.n.Add(d)))
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	source Source
	name   string
	active *activeCounter

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(source Source, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:   source,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.With(logger.String("worker", w.name))
	}

	return w
}

// Run starts the worker loop. Units the source hands out after the loop
// exits are reported back by the source.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	dequeueCtx, stop := context.WithCancel(ctx)
	defer stop()

	units := w.source.Dequeue(dequeueCtx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case u, ok := <-units:
			if !ok {
				return
			}
			w.process(ctx, u)
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one unit and reports its outcome exactly once.
func (w *InMemoryWorker) process(ctx context.Context, u Unit) { //nolint:gocritic // hugeParam: Unit is passed by value for channel semantics
	start := time.Now()
	w.active.add(1)
	defer func() {
		w.active.add(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	err := model.Guard(ctx, "worker "+w.name, u.Run)
	if err != nil {
		metrics.RecordWorkerError()
		switch {
		case errors.Is(err, model.ErrPanic):
			metrics.RecordWorkerPanic()
			metrics.RecordErrorByComponent("worker", "panic")
			w.logger.Error(ctx, "unit panicked",
				logger.String("unit", u.ID),
				logger.Error(err),
			)
		case errors.Is(err, model.ErrComputation):
			metrics.RecordErrorByComponent("worker", "computation")
			w.logger.Error(ctx, "unit failed",
				logger.String("unit", u.ID),
				logger.Error(err),
			)
		default:
			w.logger.Debug(ctx, "unit rejected",
				logger.String("unit", u.ID),
				logger.Error(err),
			)
		}
	}
	if u.Done != nil {
		u.Done(err)
	}
}

// Pool manages multiple workers and dispatches jobs onto them.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	active  activeCounter
	running atomic.Bool

	logger logger.Logger
}

// NewPool creates a new worker pool. workerCount < 1 selects runtime.NumCPU().
func NewPool(workerCount int, q Queue) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			q,
			WithName("worker-"+strconv.Itoa(i)),
			withActive(&pool.active),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool. Workers outlive ctx and stop only
// through Shutdown, so units already accepted are always answered.
func (p *Pool) Start(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		return
	}
	runCtx := context.WithoutCancel(ctx)
	for _, worker := range p.workers {
		go worker.Run(runCtx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Execute implements model.Executor. A job holds at most as many queued or
// running units as the queue has room for and feeds the rest as its own units
// complete, so it may be larger than the queue. It fails with ErrBackpressure
// only when the queue is full and none of its units is in flight. Execute
// returns once every unit has reported or ctx ends.
func (p *Pool) Execute(ctx context.Context, n int, fn model.UnitFunc) ([]error, error) {
	if !p.running.Load() {
		return nil, ErrStopped
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	errs := make([]error, n)
	if n == 0 {
		return errs, nil
	}

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	window := p.queue.Cap()
	if window < 1 || window > n {
		window = n
	}

	var (
		jobID    = uuid.NewString()
		wg       sync.WaitGroup
		inFlight = make(chan struct{}, window)
		freed    = make(chan struct{}, 1)
	)
	for i := 0; i < n; i++ {
		select {
		case inFlight <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		wg.Add(1)
		u := model.Unit{
			ID:    jobID + "/" + strconv.Itoa(i),
			JobID: jobID,
			Index: i,
			Run: func(context.Context) error {
				if err := jobCtx.Err(); err != nil {
					return err
				}
				return fn(jobCtx, i)
			},
			Done: func(err error) {
				errs[i] = err
				<-inFlight
				select {
				case freed <- struct{}{}:
				default:
				}
				wg.Done()
			},
		}
		if err := p.enqueue(ctx, u, inFlight, freed); err != nil {
			<-inFlight
			wg.Done()
			cancel()
			_ = waitUnits(ctx, &wg)
			switch {
			case errors.Is(err, queue.ErrFull):
				p.logger.Warn(ctx, "dispatch rejected", logger.String("job", jobID), logger.Int("units", n))
				return nil, fmt.Errorf("%w: %d of %d units dispatched", ErrBackpressure, i, n)
			case errors.Is(err, queue.ErrClosed):
				return nil, ErrStopped
			default:
				return nil, err
			}
		}
	}

	if err := waitUnits(ctx, &wg); err != nil {
		return nil, err
	}
	for _, e := range errs {
		if errors.Is(e, ErrStopped) || errors.Is(e, queue.ErrUndelivered) {
			return nil, ErrStopped
		}
	}
	if err := ctx.Err(); err != nil {
		return errs, err
	}
	return errs, nil
}

// enqueue retries a full queue for as long as the job has other units in
// flight; each of them signals freed when it completes.
func (p *Pool) enqueue(ctx context.Context, u Unit, inFlight, freed chan struct{}) error { //nolint:gocritic // hugeParam: Unit is passed by value for channel semantics
	for {
		err := p.queue.Enqueue(ctx, u)
		if !errors.Is(err, queue.ErrFull) || len(inFlight) <= 1 {
			return err
		}
		select {
		case <-freed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// waitUnits waits for wg or ctx, whichever comes first.
func waitUnits(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown closes the queue, lets workers drain what is already queued and
// stops them once ctx or the pool timeout expires. Units still queued at
// that point are reported with ErrStopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if !p.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var failed error
	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if err := worker.Shutdown(shutdownCtx); err != nil && failed == nil {
				failed = err
			}
		}
	}

	abandoned := p.queue.Drain(func(u Unit) {
		if u.Done != nil {
			u.Done(ErrStopped)
		}
	})
	if abandoned > 0 {
		metrics.RecordErrorByComponent("worker", "abandoned")
		p.logger.Warn(ctx, "queued units abandoned at shutdown", logger.Int("units", abandoned))
	}

	metrics.UpdateWorkerActiveCount(0)
	return failed
}
