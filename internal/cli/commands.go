package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/algobio/dnacore/internal/domain/batch"
	"github.com/algobio/dnacore/internal/domain/impact"
	"github.com/algobio/dnacore/internal/domain/model"
	"github.com/algobio/dnacore/internal/domain/mutation"
	"github.com/algobio/dnacore/internal/domain/sequence"
	"github.com/algobio/dnacore/internal/domain/simulation"
)

func newAlignCommand(e *engine) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "align <seq1> <seq2>",
		Short: "Align two sequences",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := algorithmFlag(cmd)
			if err != nil {
				return err
			}
			s1, err := e.normalize(args[0], "seq1")
			if err != nil {
				return err
			}
			s2, err := e.normalize(args[1], "seq2")
			if err != nil {
				return err
			}
			res, err := e.aligner().Align(commandContext(cmd), s1, s2, alg)
			if err != nil {
				return err
			}
			return e.print(res)
		},
	}
	addAlgorithmFlag(cmd)
	return cmd
}

func newSimulateCommand(e *engine) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <sequence>",
		Short: "Mutate a sequence and align every variant to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := algorithmFlag(cmd)
			if err != nil {
				return err
			}
			tag, _ := cmd.Flags().GetString("type")
			kind, err := mutation.ParseKind(tag)
			if err != nil {
				return err
			}
			rate, _ := cmd.Flags().GetFloat64("rate")
			count, _ := cmd.Flags().GetInt("count")

			req := simulation.Request{
				Source:       args[0],
				Kind:         kind,
				Rate:         rate,
				VariantCount: count,
				Algorithm:    alg,
			}
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetInt64("seed")
				req.Seed = &seed
			}

			orch := simulation.New(e.aligner(),
				simulation.WithMaxVariants(e.cfg.MaxVariants),
				simulation.WithMaxLength(e.cfg.MaxSequenceLength),
			)
			res, err := orch.Run(commandContext(cmd), req)
			if err != nil {
				return err
			}
			return e.print(res)
		},
	}
	addAlgorithmFlag(cmd)
	cmd.Flags().StringP("type", "t", "SUBSTITUTION", "SUBSTITUTION, INSERTION or DELETION")
	cmd.Flags().Float64P("rate", "r", 0.01, "Per-position mutation probability in [0,1]")
	cmd.Flags().IntP("count", "n", 1, "Number of variants")
	cmd.Flags().Int64P("seed", "s", 0, "Master seed for reproducible variants")
	return cmd
}

func newBatchCommand(e *engine) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <seq> <seq> [seq...]",
		Short: "Align every pair of the given sequences",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := algorithmFlag(cmd)
			if err != nil {
				return err
			}
			maxSequences, _ := cmd.Flags().GetInt("max")

			cmp := batch.New(e.aligner(),
				batch.WithDefaultMaxSequences(e.cfg.DefaultMaxSequences),
				batch.WithMaxSequences(e.cfg.MaxBatchSequences),
				batch.WithMaxLength(e.cfg.MaxSequenceLength),
			)
			pairs, err := cmp.Compare(commandContext(cmd), args, alg, maxSequences)
			if err != nil {
				return err
			}
			return e.print(pairs)
		},
	}
	addAlgorithmFlag(cmd)
	cmd.Flags().IntP("max", "m", 0, "Maximum number of sequences compared (0 uses the configured default)")
	return cmd
}

func newImpactCommand(e *engine) *cobra.Command {
	return &cobra.Command{
		Use:   "impact <identity>",
		Short: "Classify an identity percentage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return model.NewValidation(model.KindInvalidInput, "identity", "identity %q is not a number", args[0])
			}
			if err := impact.Validate(identity); err != nil {
				return err
			}
			return e.print(impact.Classify(identity))
		},
	}
}

func (e *engine) normalize(raw, field string) (sequence.Sequence, error) {
	s, err := sequence.Normalize(raw)
	if err != nil {
		return "", model.WithField(err, field)
	}
	if err := sequence.CheckLength(s, e.cfg.MaxSequenceLength); err != nil {
		return "", model.WithField(err, field)
	}
	return s, nil
}
