// Package cli implements the dnacli command line, which runs the alignment
// core in-process and prints JSON results.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/algobio/dnacore/internal/config"
	"github.com/algobio/dnacore/internal/domain/alignment"
	"github.com/algobio/dnacore/pkg/logger"
)

// version is reported by --version.
const version = "0.1.0"

// engine holds the configuration shared by all subcommands.
type engine struct {
	cfg *config.Config
	out io.Writer
}

// NewRootCommand builds the dnacli command tree writing results to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	e := &engine{out: out}

	rootCmd := &cobra.Command{
		Use:   "dnacli",
		Short: "Align nucleotide sequences and simulate mutations",
		Long: `dnacli runs pairwise alignments, mutation simulations, batch comparisons
and impact classification locally and prints the results as JSON.

Limits and local alignment tuning are read from the same configuration
as the server (DNACORE_* environment variables, DNACORE_CONFIG file).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if err := logger.SetLevelString(level); err != nil {
				return err
			}
			cfg, err := config.Load(commandContext(cmd))
			if err != nil {
				return err
			}
			e.cfg = cfg
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newAlignCommand(e),
		newSimulateCommand(e),
		newBatchCommand(e),
		newImpactCommand(e),
	)
	return rootCmd
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// aligner builds an Aligner tuned from configuration.
func (e *engine) aligner() *alignment.Aligner {
	return alignment.New(
		alignment.WithSeedLength(e.cfg.SeedLength),
		alignment.WithExtensionWindow(e.cfg.ExtensionWindow),
	)
}

func (e *engine) print(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func algorithmFlag(cmd *cobra.Command) (alignment.Algorithm, error) {
	tag, _ := cmd.Flags().GetString("algorithm")
	return alignment.ParseAlgorithm(tag)
}

func addAlgorithmFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("algorithm", "a", "NEEDLEMAN_WUNSCH", "NEEDLEMAN_WUNSCH or BLAST_SIMPLIFIED")
}
