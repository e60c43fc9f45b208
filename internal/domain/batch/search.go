package batch

import (
	"context"
	"fmt"
	"sort"

	"github.com/algobio/dnacore/internal/domain/alignment"
	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/sequence"
	"github.com/algobio/dnacore/pkg/metrics"
)

// Target is a stored sequence searched against.
type Target struct {
	ID       string
	Name     string
	Sequence string
}

// Hit is the alignment of the query against one target.
type Hit struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Sequence sequence.Sequence `json:"sequence"`
	Result   *alignment.Result `json:"result,omitempty"`
	Error    *model.UnitError  `json:"error,omitempty"`
	Err      error             `json:"-"`
}

// Search aligns query against each target and returns the best maxResults
// hits by identity, then score. Targets identical to the query and targets
// that do not normalize are skipped.
func (c *Comparator) Search(ctx context.Context, query string, targets []Target, alg alignment.Algorithm, maxResults int) ([]Hit, error) {
	q, err := c.normalize(query)
	if err != nil {
		return nil, model.WithField(err, "query")
	}
	if !alg.Valid() {
		return nil, model.NewValidation(model.KindUnsupportedAlgorithm, "algorithm", "algorithm is required")
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > c.maxResults {
		maxResults = c.maxResults
	}

	hits := make([]Hit, 0, len(targets))
	for _, t := range targets {
		s, err := sequence.Normalize(t.Sequence)
		if err != nil || s == q {
			continue
		}
		hits = append(hits, Hit{ID: t.ID, Name: t.Name, Sequence: s})
	}

	errs, err := c.exec.Execute(ctx, len(hits), func(ctx context.Context, k int) error {
		h := &hits[k]
		res, err := c.aligner.Align(ctx, q, h.Sequence, alg)
		if err != nil {
			return err
		}
		h.Result = &res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dispatch search: %w", err)
	}
	for k, e := range errs {
		if e != nil {
			hits[k].Err = e
			hits[k].Error = model.NewUnitError(e)
			hits[k].Result = nil
		}
	}

	sort.SliceStable(hits, func(x, y int) bool {
		return ranksBefore(hits[x].Result, hits[y].Result, true)
	})
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	metrics.RecordSearch(alg.String(), len(hits))
	return hits, nil
}
