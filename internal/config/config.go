// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults and Load(ctx) to layer
//   .env, YAML and environment overrides on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory work queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of alignment workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxSequenceLength rejects longer sequences before alignment.
	MaxSequenceLength int `koanf:"max_sequence_length"`

	// MaxVariants caps variant_count per simulation (at most 50).
	MaxVariants int `koanf:"max_variants"`

	// DefaultMaxSequences is the batch cap used when a request names none.
	DefaultMaxSequences int `koanf:"default_max_sequences"`

	// MaxBatchSequences is the largest max_sequences a request may ask for.
	MaxBatchSequences int `koanf:"max_batch_sequences"`

	// MaxSearchResults caps the hits returned by similarity search.
	MaxSearchResults int `koanf:"max_search_results"`

	// SeedLength and ExtensionWindow tune local alignment.
	SeedLength      int `koanf:"seed_length"`
	ExtensionWindow int `koanf:"extension_window"`

	// CacheSize bounds the alignment result cache; 0 disables it.
	CacheSize int `koanf:"cache_size"`

	// MasterSeed fixes the simulation master seed; 0 draws a fresh seed per request.
	MasterSeed int64 `koanf:"master_seed"`

	// NodeID identifies this process in generated sequence IDs (0-1023).
	NodeID int64 `koanf:"node_id"`

	// RequestTimeoutMS bounds each HTTP request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU(),
		MaxSequenceLength:   10_000,
		MaxVariants:         50,
		DefaultMaxSequences: 10,
		MaxBatchSequences:   200,
		MaxSearchResults:    50,
		SeedLength:          8,
		ExtensionWindow:     5,
		CacheSize:           1024,
		MasterSeed:          0,
		NodeID:              1,
		RequestTimeoutMS:    30_000,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxSequenceLength < 1:
		return fmt.Errorf("%w: max_sequence_length must be positive", ErrInvalidConfig)
	case c.MaxVariants < 1 || c.MaxVariants > 50:
		return fmt.Errorf("%w: max_variants must be within [1,50]", ErrInvalidConfig)
	case c.DefaultMaxSequences < 2:
		return fmt.Errorf("%w: default_max_sequences must be at least 2", ErrInvalidConfig)
	case c.MaxBatchSequences < c.DefaultMaxSequences:
		return fmt.Errorf("%w: max_batch_sequences must be at least default_max_sequences", ErrInvalidConfig)
	case c.MaxSearchResults < 1:
		return fmt.Errorf("%w: max_search_results must be positive", ErrInvalidConfig)
	case c.SeedLength < 1 || c.SeedLength > 32:
		return fmt.Errorf("%w: seed_length must be within [1,32]", ErrInvalidConfig)
	case c.ExtensionWindow < 1:
		return fmt.Errorf("%w: extension_window must be positive", ErrInvalidConfig)
	case c.CacheSize < 0:
		return fmt.Errorf("%w: cache_size must not be negative", ErrInvalidConfig)
	case c.NodeID < 0 || c.NodeID > 1023:
		return fmt.Errorf("%w: node_id must be within [0,1023]", ErrInvalidConfig)
	case c.RequestTimeoutMS < 1:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	}
	return nil
}
