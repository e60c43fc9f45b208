// Package simulation runs mutation experiments: it derives random variants
// from a source sequence and aligns each one back against the original.
package simulation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/algobio/dnacore/internal/domain/alignment"
	"github.com/algobio/dnacore/internal/domain/impact"
	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/mutation"
	"github.com/algobio/dnacore/internal/domain/sequence"
	"github.com/algobio/dnacore/pkg/metrics"
)

// MaxVariants is the hard upper bound on variants per request.
const MaxVariants = 50

// Aligner aligns two sequences.
type Aligner interface {
	Align(ctx context.Context, s1, s2 sequence.Sequence, alg alignment.Algorithm) (alignment.Result, error)
}

// Request describes one simulation.
type Request struct {
	Source       string              `json:"original_sequence"`
	Kind         mutation.Kind       `json:"mutation_type"`
	Rate         float64             `json:"mutation_rate"`
	VariantCount int                 `json:"variant_count"`
	Algorithm    alignment.Algorithm `json:"algorithm"`

	// Seed fixes the master seed; nil draws a fresh one.
	Seed *int64 `json:"seed,omitempty"`
}

// Variant is one mutated copy of the source and its alignment to it.
type Variant struct {
	Index     int               `json:"index"`
	Sequence  sequence.Sequence `json:"mutated_sequence"`
	Mutations int               `json:"mutations"`
	Alignment *alignment.Result `json:"alignment,omitempty"`
	Error     *model.UnitError  `json:"error,omitempty"`
	Err       error             `json:"-"`
}

// Result holds the variants in generation order.
type Result struct {
	ID        string              `json:"id"`
	Original  sequence.Sequence   `json:"original_sequence"`
	Kind      mutation.Kind       `json:"mutation_type"`
	Rate      float64             `json:"mutation_rate"`
	Algorithm alignment.Algorithm `json:"algorithm"`
	Seed      int64               `json:"seed"`
	Variants  []Variant           `json:"variants"`
	Failed    int                 `json:"failed"`

	// Impact classifies the best identity among aligned variants.
	Impact *impact.Assessment `json:"impact,omitempty"`
}

// Orchestrator generates and aligns variants.
type Orchestrator struct {
	aligner     Aligner
	exec        model.Executor
	maxVariants int
	maxLength   int
	seed        func() int64
}

// New creates an Orchestrator around aligner.
func New(aligner Aligner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		aligner:     aligner,
		exec:        model.Sequential{},
		maxVariants: MaxVariants,
		seed:        mutation.RandomSeed,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks req and returns its normalized source.
func (o *Orchestrator) Validate(req Request) (sequence.Sequence, error) {
	src, err := sequence.Normalize(req.Source)
	if err != nil {
		return "", model.WithField(err, "original_sequence")
	}
	if err := sequence.CheckLength(src, o.maxLength); err != nil {
		return "", model.WithField(err, "original_sequence")
	}
	if !req.Kind.Valid() {
		return "", model.NewValidation(model.KindUnsupportedMutation, "mutation_type", "mutation type is required")
	}
	if err := mutation.ValidateRate(req.Rate); err != nil {
		return "", err
	}
	if req.VariantCount < 1 || req.VariantCount > o.maxVariants {
		return "", model.NewValidation(model.KindOutOfRange, "variant_count",
			"variant count %d outside [1,%d]", req.VariantCount, o.maxVariants)
	}
	if !req.Algorithm.Valid() {
		return "", model.NewValidation(model.KindUnsupportedAlgorithm, "algorithm", "algorithm is required")
	}
	return src, nil
}

// Run validates req, then mutates and aligns every variant. Validation
// failures reject the request; per-variant failures are reported on the
// variant and leave its siblings intact.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	src, err := o.Validate(req)
	if err != nil {
		metrics.RecordSimulation(req.Kind.String(), "rejected")
		return Result{}, err
	}

	master := o.seed()
	if req.Seed != nil {
		master = *req.Seed
	}

	variants := make([]Variant, req.VariantCount)
	errs, err := o.exec.Execute(ctx, req.VariantCount, func(ctx context.Context, i int) error {
		rng := mutation.NewSource(mutation.DeriveSeed(master, i))
		mutated, applied, err := mutation.Mutate(src, req.Kind, req.Rate, rng)
		if err != nil {
			return err
		}
		variants[i] = Variant{Index: i, Sequence: mutated, Mutations: applied}

		res, err := o.aligner.Align(ctx, src, mutated, req.Algorithm)
		if err != nil {
			return err
		}
		variants[i].Alignment = &res
		return nil
	})
	if err != nil {
		metrics.RecordSimulation(req.Kind.String(), "error")
		return Result{}, fmt.Errorf("dispatch variants: %w", err)
	}

	out := Result{
		ID:        uuid.NewString(),
		Original:  src,
		Kind:      req.Kind,
		Rate:      req.Rate,
		Algorithm: req.Algorithm,
		Seed:      master,
		Variants:  variants,
	}

	best := -1.0
	for i := range variants {
		v := &variants[i]
		v.Index = i
		if errs[i] != nil {
			v.Err = errs[i]
			v.Error = model.NewUnitError(errs[i])
			v.Alignment = nil
			out.Failed++
			metrics.RecordVariant(req.Kind.String(), "error")
			continue
		}
		metrics.RecordVariant(req.Kind.String(), "ok")
		if v.Alignment.IdentityPercent > best {
			best = v.Alignment.IdentityPercent
		}
	}
	if best >= 0 {
		a := impact.Classify(best)
		out.Impact = &a
		metrics.RecordImpact(string(a.Level))
	}

	metrics.RecordSimulation(req.Kind.String(), "ok")
	return out, nil
}
