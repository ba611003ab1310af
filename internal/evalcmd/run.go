package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/partmatch/internal/catalog"
	"github.com/lehigh-university-libraries/partmatch/internal/eval/dataset"
	"github.com/lehigh-university-libraries/partmatch/internal/eval/metrics"
	"github.com/lehigh-university-libraries/partmatch/internal/eval/results"
	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
	"github.com/lehigh-university-libraries/partmatch/internal/scoring"
)

type runOptions struct {
	datasetPath   string
	sampleSize    int
	concurrency   int
	profile       string
	catalogPath   string
	outputJSON    string
	outputReport  string
	outputYAMLDir string
	forceDownload bool
}

func executeRun(ctx context.Context, opts runOptions) error {
	profile, err := metadata.ParseProfile(opts.profile)
	if err != nil {
		return err
	}

	slog.Info("Starting evaluation run", "dataset", opts.datasetPath, "profile", profile, "catalog", opts.catalogPath)

	registry, err := catalog.Load(profile, opts.catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load component catalog: %w", err)
	}

	localPath, err := dataset.Resolve(ctx, opts.datasetPath, downloadConfig(opts.forceDownload))
	if err != nil {
		return err
	}

	// Load dataset
	slog.Info("Loading dataset...")
	records, err := dataset.NewLoader(localPath).LoadSample(opts.sampleSize)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "pairs", len(records))

	evalResults, err := scoreAll(ctx, registry, records, opts.concurrency)
	if err != nil {
		return err
	}

	slog.Info("Calculating summary statistics...")
	agg := metrics.AggregateEvaluationResults(evalResults, profile, opts.catalogPath)
	agg.PrintSummary()

	if opts.outputJSON != "" {
		if err := agg.SaveToJSON(opts.outputJSON); err != nil {
			return err
		}
		slog.Info("Saved JSON results", "path", opts.outputJSON)
	}
	if opts.outputReport != "" {
		if err := agg.SaveDetailedReport(opts.outputReport); err != nil {
			return err
		}
		slog.Info("Saved detailed report", "path", opts.outputReport)
	}
	if opts.outputYAMLDir != "" {
		if _, err := results.SaveToYAML(opts.outputYAMLDir, opts.datasetPath, agg); err != nil {
			return err
		}
	}

	if opts.outputJSON != "" {
		fmt.Printf("\nGenerate a report with:\n")
		fmt.Printf("  partmatch eval report --results %s\n", opts.outputJSON)
	}

	return nil
}

// scoreAll scores records with at most concurrency workers in flight.
// Results keep the dataset order.
func scoreAll(ctx context.Context, registry *metadata.Registry, records []dataset.PairRecord, concurrency int) ([]metrics.EvaluationResult, error) {
	slog.Info("Processing pairs", "concurrency", concurrency)

	out := make([]metrics.EvaluationResult, len(records))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i := range records {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("evaluation interrupted: %w", err)
		}
		semaphore <- struct{}{} // Acquire

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release

			slog.Debug("Processing pair", "id", records[idx].ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(records)))
			out[idx] = scorePair(registry, &records[idx])
		}(i)
	}

	wg.Wait()
	return out, nil
}

func scorePair(registry *metadata.Registry, record *dataset.PairRecord) metrics.EvaluationResult {
	start := time.Now()
	result := metrics.EvaluationResult{
		ID:            record.ID,
		ComponentType: record.ComponentType,
		OriginalMPN:   record.OriginalMPN,
		CandidateMPN:  record.CandidateMPN,
		Expected:      record.ExpectedSubstitute,
	}

	md, err := registry.Lookup(record.ComponentType)
	if err != nil {
		result.Error = err.Error()
		result.ProcessingTime = time.Since(start)
		return result
	}

	result.Result = scoring.Compare(record.OriginalSet(), record.CandidateSet(), md)
	result.ProcessingTime = time.Since(start)
	return result
}

func executeConvert(input, output string) error {
	records, err := dataset.NewLoader(input).Load()
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if err := dataset.WriteParquet(output, records); err != nil {
		return err
	}

	slog.Info("Converted dataset", "input", input, "output", output, "pairs", len(records))
	return nil
}
