// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/algobio/dnacore/internal/adapters/cache"
	workqueue "github.com/algobio/dnacore/internal/adapters/mq/queue"
	workerpool "github.com/algobio/dnacore/internal/adapters/mq/worker"
	"github.com/algobio/dnacore/internal/adapters/repository"
	"github.com/algobio/dnacore/internal/domain/alignment"
	"github.com/algobio/dnacore/internal/domain/batch"
	"github.com/algobio/dnacore/internal/domain/impact"
	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/mutation"
	"github.com/algobio/dnacore/internal/domain/sequence"
	"github.com/algobio/dnacore/internal/domain/simulation"
	"github.com/algobio/dnacore/internal/domain/types"
	"github.com/algobio/dnacore/pkg/logger"
	"github.com/algobio/dnacore/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize        = 10000
	defaultMaxLength        = 10000
	defaultMaxSearchResults = 50
	defaultCacheSize        = 1024
	defaultNodeID           = 1
)

// SimulateRequest is a simulation request whose source may be given by
// stored sequence id instead of text.
type SimulateRequest struct {
	simulation.Request
	SequenceID string `json:"sequence_id,omitempty"`
}

// Service wires the aligner, cache, worker pool and sequence store.
type Service struct {
	mu sync.RWMutex

	// Core components
	queue      *workqueue.InMemoryQueue
	pool       *workerpool.Pool
	aligner    *cache.Aligner
	sims       *simulation.Orchestrator
	comparator *batch.Comparator
	store      repository.Store

	// Configuration
	workerCount         int
	queueSize           int
	maxLength           int
	maxVariants         int
	defaultMaxSequences int
	maxBatchSequences   int
	maxSearchResults    int
	cacheSize           int
	masterSeed          int64
	nodeID              int64
	alignerOpts         []alignment.Option

	// Counters
	seedCounter atomic.Int64
	alignments  atomic.Int64
	simulations atomic.Int64
	variants    atomic.Int64
	batches     atomic.Int64
	pairs       atomic.Int64
	searches    atomic.Int64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:         runtime.NumCPU(),
		queueSize:           defaultQueueSize,
		maxLength:           defaultMaxLength,
		maxVariants:         simulation.MaxVariants,
		defaultMaxSequences: batch.DefaultMaxSequences,
		maxBatchSequences:   batch.MaxSequences,
		maxSearchResults:    defaultMaxSearchResults,
		cacheSize:           defaultCacheSize,
		nodeID:              defaultNodeID,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components. The sequence store
// survives Stop/Start cycles.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting alignment service...")

	if s.store == nil {
		store, err := repository.NewMemoryStore(
			repository.WithNodeID(s.nodeID),
			repository.WithMaxLength(s.maxLength),
		)
		if err != nil {
			return fmt.Errorf("create sequence store: %w", err)
		}
		s.store = store
	}

	s.queue = workqueue.NewInMemoryQueue(workqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue)
	s.pool.Start(ctx)

	s.aligner = cache.NewAligner(
		alignment.New(s.alignerOpts...),
		cache.NewInMemoryCache(cache.WithMaxSize(s.cacheSize)),
	)
	s.sims = simulation.New(s.aligner,
		simulation.WithExecutor(s.pool),
		simulation.WithMaxVariants(s.maxVariants),
		simulation.WithMaxLength(s.maxLength),
		simulation.WithSeedSource(s.nextSeed),
	)
	s.comparator = batch.New(s.aligner,
		batch.WithExecutor(s.pool),
		batch.WithDefaultMaxSequences(s.defaultMaxSequences),
		batch.WithMaxSequences(s.maxBatchSequences),
		batch.WithMaxResults(s.maxSearchResults),
		batch.WithMaxLength(s.maxLength),
	)

	s.started = true
	s.logger.Info(ctx, "alignment service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("cacheSize", s.cacheSize),
		logger.Bool("fixedSeed", s.masterSeed != 0),
	)

	return nil
}

// Stop gracefully shuts down the worker pool.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping alignment service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "alignment service stopped")
}

// nextSeed draws the master seed of a simulation without an explicit seed.
func (s *Service) nextSeed() int64 {
	if s.masterSeed == 0 {
		return mutation.RandomSeed()
	}
	return mutation.DeriveSeed(s.masterSeed, int(s.seedCounter.Add(1)-1))
}

// components returns the running pipeline or ErrNotStarted.
func (s *Service) components() (*cache.Aligner, *simulation.Orchestrator, *batch.Comparator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, nil, ErrNotStarted
	}
	return s.aligner, s.sims, s.comparator, nil
}

func (s *Service) sequenceStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Align normalizes both inputs and aligns them.
func (s *Service) Align(ctx context.Context, seq1, seq2 string, alg alignment.Algorithm) (alignment.Result, error) {
	aligner, _, _, err := s.components()
	if err != nil {
		return alignment.Result{}, err
	}
	a, err := s.normalize(seq1, "seq1")
	if err != nil {
		return alignment.Result{}, err
	}
	b, err := s.normalize(seq2, "seq2")
	if err != nil {
		return alignment.Result{}, err
	}
	if !alg.Valid() {
		return alignment.Result{}, model.NewValidation(model.KindUnsupportedAlgorithm, "algorithm", "algorithm is required")
	}

	res, err := aligner.Align(ctx, a, b, alg)
	if err != nil {
		if errors.Is(err, model.ErrComputation) {
			metrics.RecordErrorByComponent("service", "computation")
			s.logger.Error(ctx, "alignment failed",
				logger.String("algorithm", alg.String()),
				logger.Int("len1", a.Len()),
				logger.Int("len2", b.Len()),
				logger.Error(err),
			)
		}
		return alignment.Result{}, err
	}
	s.alignments.Add(1)
	return res, nil
}

// Simulate resolves the request source and runs the simulation on the pool.
func (s *Service) Simulate(ctx context.Context, req SimulateRequest) (simulation.Result, error) {
	_, sims, _, err := s.components()
	if err != nil {
		return simulation.Result{}, err
	}

	if id := strings.TrimSpace(req.SequenceID); id != "" {
		if strings.TrimSpace(req.Source) != "" {
			return simulation.Result{}, model.NewValidation(model.KindInvalidInput, "sequence_id",
				"set either sequence_id or original_sequence, not both")
		}
		rec, err := s.GetSequence(ctx, id)
		if err != nil {
			return simulation.Result{}, err
		}
		req.Source = rec.Sequence
	}

	res, err := sims.Run(ctx, req.Request)
	if err != nil {
		return simulation.Result{}, err
	}
	s.simulations.Add(1)
	s.variants.Add(int64(len(res.Variants)))
	if res.Failed > 0 {
		s.logger.Warn(ctx, "simulation finished with failed variants",
			logger.String("simulation", res.ID),
			logger.Int("failed", res.Failed),
			logger.Int("variants", len(res.Variants)),
		)
	}
	return res, nil
}

// BatchCompare aligns every pair of the inputs on the pool.
func (s *Service) BatchCompare(ctx context.Context, seqs []string, alg alignment.Algorithm, maxSequences int) ([]batch.Pair, error) {
	_, _, comparator, err := s.components()
	if err != nil {
		return nil, err
	}
	pairs, err := comparator.Compare(ctx, seqs, alg, maxSequences)
	if err != nil {
		return nil, err
	}
	s.batches.Add(1)
	s.pairs.Add(int64(len(pairs)))
	return pairs, nil
}

// Search aligns query against every stored sequence.
func (s *Service) Search(ctx context.Context, query string, alg alignment.Algorithm, maxResults int) ([]batch.Hit, error) {
	_, _, comparator, err := s.components()
	if err != nil {
		return nil, err
	}
	records := s.ListSequences(ctx)
	targets := make([]batch.Target, len(records))
	for i, rec := range records {
		targets[i] = batch.Target{ID: rec.ID, Name: rec.Name, Sequence: rec.Sequence}
	}
	hits, err := comparator.Search(ctx, query, targets, alg, maxResults)
	if err != nil {
		return nil, err
	}
	s.searches.Add(1)
	return hits, nil
}

// ClassifyImpact maps an identity percentage to an impact assessment.
func (s *Service) ClassifyImpact(identity float64) (impact.Assessment, error) {
	if err := impact.Validate(identity); err != nil {
		return impact.Assessment{}, err
	}
	a := impact.Classify(identity)
	metrics.RecordImpact(string(a.Level))
	return a, nil
}

// AddSequence stores a named sequence.
func (s *Service) AddSequence(ctx context.Context, name, seq string) (types.SequenceRecord, error) {
	store, err := s.sequenceStore()
	if err != nil {
		return types.SequenceRecord{}, err
	}
	return store.Add(ctx, name, seq)
}

// GetSequence returns a stored sequence by id.
func (s *Service) GetSequence(ctx context.Context, id string) (types.SequenceRecord, error) {
	store, err := s.sequenceStore()
	if err != nil {
		return types.SequenceRecord{}, err
	}
	rec, err := store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return types.SequenceRecord{}, fmt.Errorf("%w: %s", ErrSequenceNotFound, id)
	}
	return rec, err
}

// ListSequences returns all stored sequences.
func (s *Service) ListSequences(ctx context.Context) []types.SequenceRecord {
	store, err := s.sequenceStore()
	if err != nil {
		return nil
	}
	return store.List(ctx)
}

func (s *Service) normalize(raw, field string) (sequence.Sequence, error) {
	seq, err := sequence.Normalize(raw)
	if err != nil {
		return "", model.WithField(err, field)
	}
	if err := sequence.CheckLength(seq, s.maxLength); err != nil {
		return "", model.WithField(err, field)
	}
	return seq, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":           s.started,
		"workerCount":       s.workerCount,
		"queueSize":         s.queueSize,
		"maxSequenceLength": s.maxLength,
		"totalAlignments":   s.alignments.Load(),
		"totalSimulations":  s.simulations.Load(),
		"totalVariants":     s.variants.Load(),
		"totalBatches":      s.batches.Load(),
		"totalPairs":        s.pairs.Load(),
		"totalSearches":     s.searches.Load(),
	}

	if s.store != nil {
		stored := s.store.Count(ctx)
		stats["storedSequences"] = stored
		metrics.UpdateStoredSequences(stored)
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["workers"] = s.pool.Size()
		stats["cachedAlignments"] = s.aligner.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}
