package evalcmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lehigh-university-libraries/partmatch/internal/eval/dataset"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command for scoring a labelled pair dataset
func NewRunCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score a dataset of original/candidate part pairs",
		Long: `Score every original/candidate pair in a JSONL or Parquet dataset.

Each pair is compared with the metadata for its component type. When the
dataset carries expected_substitute labels, the run reports how often the
engine's verdict agrees with them (precision, recall, accuracy).`,
		Example: `  # Score the first 100 pairs with the strict profile
  partmatch eval run --dataset pairs.jsonl --sample 100

  # Use the loose profile and a custom catalog
  partmatch eval run --dataset pairs.parquet --profile design-phase-loose --types types.yaml

  # Score everything with 8 workers
  partmatch eval run --dataset pairs.parquet --sample -1 --concurrency 8

  # Fetch a published dataset (cached under ~/.cache/partmatch/datasets)
  partmatch eval run --dataset https://example.com/exports/pairs.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dataset.IsRemote(opts.datasetPath) {
				if _, err := os.Stat(opts.datasetPath); os.IsNotExist(err) {
					return fmt.Errorf("dataset file not found: %s", opts.datasetPath)
				}
			}
			if opts.concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1")
			}
			if opts.profile == "" {
				opts.profile = os.Getenv("PARTMATCH_PROFILE")
			}
			if opts.catalogPath == "" {
				opts.catalogPath = os.Getenv("PARTMATCH_TYPES")
			}

			return executeRun(contextOrBackground(cmd.Context()), opts)
		},
	}

	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "Path or http(s) URL of a parquet or jsonl pair dataset (required)")
	cmd.Flags().BoolVar(&opts.forceDownload, "force-download", false, "Download a remote dataset even when it is cached")
	cmd.Flags().IntVar(&opts.sampleSize, "sample", 10, "Number of pairs to score (-1 for all)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "Number of pairs scored in parallel")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "Scoring profile: replacement-strict or design-phase-loose (env PARTMATCH_PROFILE)")
	cmd.Flags().StringVar(&opts.catalogPath, "types", "", "Path to a component type catalog YAML (env PARTMATCH_TYPES)")
	cmd.Flags().StringVar(&opts.outputJSON, "output-json", "eval_results.json", "Path to output JSON results file")
	cmd.Flags().StringVar(&opts.outputReport, "output-report", "eval_report.txt", "Path to output detailed report file")
	cmd.Flags().StringVar(&opts.outputYAMLDir, "output-yaml-dir", "evals", "Directory for the YAML run file (empty to skip)")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a report from saved evaluation results",
		Long:  `Print a report from the JSON results written by "eval run".`,
		Example: `  # Text summary
  partmatch eval report --results eval_results.json

  # One CSV row per pair
  partmatch eval report --results eval_results.json --format csv > pairs.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "eval_results.json", "Path to JSON results file")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, csv)")

	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var datasetPath string
	var limit int
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect dataset pairs",
		Long: `Inspect pairs from a parquet or jsonl dataset file.

Useful for checking what the extraction pipeline produced for each part
before scoring it.`,
		Example: `  # Inspect first 5 pairs interactively
  partmatch eval inspect --dataset pairs.parquet --limit 5 --interactive

  # Inspect all pairs (no limit)
  partmatch eval inspect --dataset pairs.jsonl --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Create a context that gets canceled on an interrupt signal (Ctrl+C)
			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return executeInspect(ctx, cmd.OutOrStdout(), datasetPath, limit, interactive)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path or http(s) URL of a parquet or jsonl dataset (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of pairs to inspect (0 for all)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pause after each pair (press Enter to continue)")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

// NewConvertCmd creates the convert command
func NewConvertCmd() *cobra.Command {
	var input string
	var output string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a JSONL pair dataset to Parquet",
		Example: `  partmatch eval convert --input pairs.jsonl --output pairs.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeConvert(input, output)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Path to jsonl dataset (required)")
	cmd.Flags().StringVar(&output, "output", "", "Path to write the parquet file (required)")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// downloadConfig builds the remote dataset settings from the environment.
func downloadConfig(force bool) dataset.DownloadConfig {
	return dataset.DownloadConfig{
		CacheDir:      os.Getenv("PARTMATCH_CACHE_DIR"),
		Token:         os.Getenv("PARTMATCH_DATASET_TOKEN"),
		ForceDownload: force,
	}
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
