package cmd

import (
	"github.com/lehigh-university-libraries/partmatch/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Part substitution evaluation tools",
		Long: `Evaluation tools for measuring how well the scoring engine agrees with
labelled cross-reference data.

Datasets are JSONL or Parquet files of original/candidate part pairs with
their extracted specifications and, optionally, whether the candidate is a
known substitute.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())
	cmd.AddCommand(evalcmd.NewConvertCmd())

	return cmd
}
