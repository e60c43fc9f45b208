package service

import (
	"github.com/algobio/dnacore/internal/domain/alignment"
	"github.com/algobio/dnacore/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the work queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxSequenceLength sets the longest accepted sequence.
func WithMaxSequenceLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLength = n
		}
	}
}

// WithMaxVariants sets the per-simulation variant limit.
func WithMaxVariants(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxVariants = n
		}
	}
}

// WithDefaultMaxSequences sets the batch truncation limit used when a
// request does not name one.
func WithDefaultMaxSequences(n int) Option {
	return func(s *Service) {
		if n >= 2 {
			s.defaultMaxSequences = n
		}
	}
}

// WithMaxBatchSequences sets the largest max_sequences a batch may ask for.
func WithMaxBatchSequences(n int) Option {
	return func(s *Service) {
		if n >= 2 {
			s.maxBatchSequences = n
		}
	}
}

// WithMaxSearchResults caps similarity search results.
func WithMaxSearchResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSearchResults = n
		}
	}
}

// WithLocalTuning sets the seed length and extension window of the local strategy.
func WithLocalTuning(seedLength, window int) Option {
	return func(s *Service) {
		s.alignerOpts = append(s.alignerOpts,
			alignment.WithSeedLength(seedLength),
			alignment.WithExtensionWindow(window),
		)
	}
}

// WithCacheSize sets the number of cached alignments. Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.cacheSize = n
		}
	}
}

// WithMasterSeed makes simulations without an explicit seed reproducible
// across restarts. Zero keeps fresh random seeds.
func WithMasterSeed(seed int64) Option {
	return func(s *Service) {
		s.masterSeed = seed
	}
}

// WithNodeID sets the snowflake node used for sequence ids.
func WithNodeID(id int64) Option {
	return func(s *Service) {
		s.nodeID = id
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
