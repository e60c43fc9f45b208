// Package batch compares many sequences pairwise and ranks the results.
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

// Defaults.
const (
	DefaultMaxSequences = 10
	DefaultMaxResults   = 10
	MaxSequences        = 200 // hard cap on max_sequences
	defaultResultCap    = 50
)

// Aligner aligns two sequences.
type Aligner interface {
	Align(ctx context.Context, s1, s2 sequence.Sequence, alg alignment.Algorithm) (alignment.Result, error)
}

// Pair is the comparison of inputs I and J, I < J.
type Pair struct {
	I      int               `json:"i"`
	J      int               `json:"j"`
	A      sequence.Sequence `json:"seq_a"`
	B      sequence.Sequence `json:"seq_b"`
	Result *alignment.Result `json:"result,omitempty"`
	Error  *model.UnitError  `json:"error,omitempty"`
	Err    error             `json:"-"`
}

// Comparator runs batch comparisons and similarity searches.
type Comparator struct {
	aligner    Aligner
	exec       model.Executor
	defaultMax int
	hardMax    int
	maxResults int
	maxLength  int
}

// New creates a Comparator around aligner.
func New(aligner Aligner, opts ...Option) *Comparator {
	c := &Comparator{
		aligner:    aligner,
		exec:       model.Sequential{},
		defaultMax: DefaultMaxSequences,
		hardMax:    MaxSequences,
		maxResults: defaultResultCap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare aligns every unordered pair among the first maxSequences inputs
// and returns the pairs by descending identity. A non-positive maxSequences
// selects the default; values above the hard cap are rejected. Pairs that
// failed are listed last with their error.
func (c *Comparator) Compare(ctx context.Context, raw []string, alg alignment.Algorithm, maxSequences int) ([]Pair, error) {
	if len(raw) < 2 {
		metrics.RecordBatch(alg.String(), "rejected", 0)
		return nil, model.NewValidation(model.KindInsufficientInput, "sequences",
			"at least 2 sequences are required, got %d", len(raw))
	}
	if maxSequences <= 0 {
		maxSequences = min(c.defaultMax, c.hardMax)
	}
	if maxSequences < 2 || maxSequences > c.hardMax {
		metrics.RecordBatch(alg.String(), "rejected", 0)
		return nil, model.NewValidation(model.KindOutOfRange, "max_sequences",
			"max sequences %d outside [2,%d]", maxSequences, c.hardMax)
	}
	if !alg.Valid() {
		metrics.RecordBatch(alg.String(), "rejected", 0)
		return nil, model.NewValidation(model.KindUnsupportedAlgorithm, "algorithm", "algorithm is required")
	}
	if len(raw) > maxSequences {
		raw = raw[:maxSequences]
	}

	seqs := make([]sequence.Sequence, len(raw))
	for i, r := range raw {
		s, err := c.normalize(r)
		if err != nil {
			metrics.RecordBatch(alg.String(), "rejected", 0)
			return nil, model.WithField(err, fmt.Sprintf("sequences[%d]", i))
		}
		seqs[i] = s
	}

	pairs := make([]Pair, 0, len(seqs)*(len(seqs)-1)/2)
	for i := 0; i < len(seqs); i++ {
		for j := i + 1; j < len(seqs); j++ {
			pairs = append(pairs, Pair{I: i, J: j, A: seqs[i], B: seqs[j]})
		}
	}

	errs, err := c.exec.Execute(ctx, len(pairs), func(ctx context.Context, k int) error {
		p := &pairs[k]
		res, err := c.aligner.Align(ctx, p.A, p.B, alg)
		if err != nil {
			return err
		}
		p.Result = &res
		return nil
	})
	if err != nil {
		metrics.RecordBatch(alg.String(), "error", len(pairs))
		return nil, fmt.Errorf("dispatch pairs: %w", err)
	}
	for k, e := range errs {
		if e != nil {
			pairs[k].Err = e
			pairs[k].Error = model.NewUnitError(e)
			pairs[k].Result = nil
		}
	}

	sort.SliceStable(pairs, func(x, y int) bool {
		return ranksBefore(pairs[x].Result, pairs[y].Result, false)
	})
	metrics.RecordBatch(alg.String(), "ok", len(pairs))
	return pairs, nil
}

func (c *Comparator) normalize(raw string) (sequence.Sequence, error) {
	s, err := sequence.Normalize(raw)
	if err != nil {
		return "", err
	}
	if err := sequence.CheckLength(s, c.maxLength); err != nil {
		return "", err
	}
	return s, nil
}

// ranksBefore orders successful results by descending identity and puts
// failures last. With byScore, equal identities fall back to descending score.
func ranksBefore(x, y *alignment.Result, byScore bool) bool {
	switch {
	case x == nil:
		return false
	case y == nil:
		return true
	case x.IdentityPercent != y.IdentityPercent:
		return x.IdentityPercent > y.IdentityPercent
	case byScore:
		return x.Score > y.Score
	default:
		return false
	}
}
