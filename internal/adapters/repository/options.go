package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithNodeID sets the snowflake node used for ids (0..1023).
func WithNodeID(id int64) Option {
	return func(s *MemoryStore) {
		s.nodeID = id
	}
}

// WithMaxLength sets the longest sequence accepted. Zero or negative disables the check.
func WithMaxLength(n int) Option {
	return func(s *MemoryStore) {
		s.maxLength = n
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
