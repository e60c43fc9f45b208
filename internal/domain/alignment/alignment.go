// Package alignment computes pairwise nucleotide alignments.
//
// Two strategies are supported: a full Needleman–Wunsch global alignment and
// a simplified local alignment built from exact k-mer seeds extended without
// gaps. Both share one linear scoring scheme and are pure: the same inputs
// always produce the same Result.
package alignment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/sequence"
	"github.com/algobio/dnacore/pkg/metrics"
)

// Default tuning constants for the local strategy.
const (
	DefaultSeedLength      = 8
	DefaultExtensionWindow = 5
	minSeedLength          = 1
	maxSeedLength          = 32
)

// Scoring is a linear scoring scheme.
type Scoring struct {
	Match    int `json:"match"`
	Mismatch int `json:"mismatch"`
	Gap      int `json:"gap"`
}

// DefaultScoring is match +1, mismatch -1, gap -2.
var DefaultScoring = Scoring{Match: 1, Mismatch: -1, Gap: -2}

func (s Scoring) pair(x, y byte) int {
	if x == y {
		return s.Match
	}
	return s.Mismatch
}

// Result is the outcome of one pairwise alignment.
type Result struct {
	Algorithm       Algorithm `json:"algorithm"`
	Aligned1        string    `json:"aligned_seq1"`
	Aligned2        string    `json:"aligned_seq2"`
	Score           int       `json:"score"`
	IdentityPercent float64   `json:"identity_percent"`

	// Window is the matched region of a local alignment; nil for global.
	Window *Window `json:"window,omitempty"`
}

// Window locates a local alignment in both inputs using half-open,
// 0-based coordinates.
type Window struct {
	Start1 int `json:"start1"`
	End1   int `json:"end1"`
	Start2 int `json:"start2"`
	End2   int `json:"end2"`
}

// Len returns the number of aligned columns in the window.
func (w Window) Len() int { return w.End1 - w.Start1 }

// Option applies a configuration option to the Aligner.
type Option func(*Aligner)

// WithScoring overrides the scoring scheme.
func WithScoring(s Scoring) Option {
	return func(a *Aligner) {
		a.scoring = s
	}
}

// WithSeedLength sets k for local seeding. Values outside [1,32] are ignored.
func WithSeedLength(k int) Option {
	return func(a *Aligner) {
		if k >= minSeedLength && k <= maxSeedLength {
			a.seedLength = k
		}
	}
}

// WithExtensionWindow sets how many consecutive non-improving steps end an
// ungapped extension.
func WithExtensionWindow(w int) Option {
	return func(a *Aligner) {
		if w > 0 {
			a.window = w
		}
	}
}

// Aligner computes alignments. It is safe for concurrent use.
type Aligner struct {
	scoring    Scoring
	seedLength int
	window     int
}

// New creates an Aligner with the default scoring and local tuning.
func New(opts ...Option) *Aligner {
	a := &Aligner{
		scoring:    DefaultScoring,
		seedLength: DefaultSeedLength,
		window:     DefaultExtensionWindow,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Align aligns s1 against s2 with the selected algorithm.
func (a *Aligner) Align(ctx context.Context, s1, s2 sequence.Sequence, alg Algorithm) (Result, error) {
	if !alg.Valid() {
		return Result{}, unsupported(alg)
	}
	if s1.Len() == 0 || s2.Len() == 0 {
		return Result{}, &model.ValidationError{
			Kind:    model.KindInvalidInput,
			Message: fmt.Sprintf("cannot align empty sequence (lengths %d and %d)", s1.Len(), s2.Len()),
		}
	}

	start := time.Now()
	var (
		res Result
		err error
	)
	switch alg {
	case Global:
		res, err = a.global(ctx, string(s1), string(s2))
	case Local:
		res, err = a.local(ctx, string(s1), string(s2))
	}
	metrics.RecordAlignmentLatency(alg.String(), float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordAlignment(alg.String(), "error")
		return Result{}, err
	}
	if err := checkResult(res); err != nil {
		metrics.RecordAlignment(alg.String(), "error")
		return Result{}, err
	}
	metrics.RecordAlignment(alg.String(), "ok")
	return res, nil
}

// checkResult verifies the invariants every Result must satisfy.
func checkResult(r Result) error {
	const op = "alignment.check"
	if len(r.Aligned1) != len(r.Aligned2) {
		return model.NewComputation(op, "aligned lengths differ: %d vs %d", len(r.Aligned1), len(r.Aligned2))
	}
	if math.IsNaN(r.IdentityPercent) || r.IdentityPercent < 0 || r.IdentityPercent > 100 {
		return model.NewComputation(op, "identity %v outside [0,100]", r.IdentityPercent)
	}
	for i := 0; i < len(r.Aligned1); i++ {
		if r.Aligned1[i] == sequence.Gap && r.Aligned2[i] == sequence.Gap {
			return model.NewComputation(op, "gap aligned to gap at column %d", i)
		}
	}
	return nil
}

// identity returns 100*matches/columns over two equal-length gapped strings.
func identity(x, y string) float64 {
	if len(x) == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < len(x); i++ {
		if x[i] == y[i] && x[i] != sequence.Gap {
			matches++
		}
	}
	return 100 * float64(matches) / float64(len(x))
}

// rescore recomputes the score of a gapped alignment.
func (s Scoring) rescore(x, y string) int {
	total := 0
	for i := 0; i < len(x); i++ {
		if x[i] == sequence.Gap || y[i] == sequence.Gap {
			total += s.Gap
			continue
		}
		total += s.pair(x[i], y[i])
	}
	return total
}
