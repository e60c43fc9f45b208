// Package repository keeps named sequences in memory.
package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/sequence"
	"github.com/algobio/dnacore/internal/domain/types"
	"github.com/algobio/dnacore/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultNodeID    = 1
	defaultMaxLength = 10000
)

// Store provides read/write access to stored sequences.
type Store interface {
	// Add normalizes and stores a sequence under a new id.
	Add(ctx context.Context, name, raw string) (types.SequenceRecord, error)

	// Get returns the record for id. Returns ErrNotFound if id is unknown.
	Get(ctx context.Context, id string) (types.SequenceRecord, error)

	// List returns all records in insertion order.
	List(ctx context.Context) []types.SequenceRecord

	// Count returns the number of stored sequences.
	Count(ctx context.Context) int
}

// MemoryStore implements Store. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]int
	records []types.SequenceRecord

	node      *snowflake.Node
	nodeID    int64
	maxLength int
	now       func() time.Time
}

// NewMemoryStore creates a new store with configuration options.
func NewMemoryStore(opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		byID:      make(map[string]int),
		nodeID:    defaultNodeID,
		maxLength: defaultMaxLength,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	node, err := snowflake.NewNode(s.nodeID)
	if err != nil {
		return nil, &InvalidNodeError{NodeID: s.nodeID, Err: err}
	}
	s.node = node

	metrics.UpdateStoredSequences(0)
	return s, nil
}

// Add implements Store.
func (s *MemoryStore) Add(ctx context.Context, name, raw string) (types.SequenceRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.SequenceRecord{}, model.NewValidation(model.KindInvalidInput, "name", "name is required")
	}
	seq, err := sequence.Normalize(raw)
	if err != nil {
		return types.SequenceRecord{}, model.WithField(err, "sequence")
	}
	if err := sequence.CheckLength(seq, s.maxLength); err != nil {
		return types.SequenceRecord{}, model.WithField(err, "sequence")
	}

	rec := types.SequenceRecord{
		ID:        s.node.Generate().String(),
		Name:      name,
		Sequence:  seq.String(),
		Length:    seq.Len(),
		GCContent: sequence.GCContent(seq),
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.byID[rec.ID] = len(s.records)
	s.records = append(s.records, rec)
	count := len(s.records)
	s.mu.Unlock()

	metrics.UpdateStoredSequences(count)
	return rec, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (types.SequenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return types.SequenceRecord{}, ErrNotFound
	}
	return s.records[i], nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) []types.SequenceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.SequenceRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Count implements Store.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
