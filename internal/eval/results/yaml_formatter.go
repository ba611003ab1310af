package results

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/partmatch/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Profile     string `yaml:"profile"`
	CatalogPath string `yaml:"catalogpath,omitempty"`
	DatasetPath string `yaml:"datasetpath"`
	SampleSize  int    `yaml:"samplesize"`
	Timestamp   string `yaml:"timestamp"`
}

// EvalResult represents a single scored pair
type EvalResult struct {
	Identifier      string             `yaml:"identifier"`
	ComponentType   string             `yaml:"componenttype"`
	OriginalMPN     string             `yaml:"originalmpn"`
	CandidateMPN    string             `yaml:"candidatempn"`
	Score           float64            `yaml:"score"`
	Acceptable      bool               `yaml:"acceptable"`
	Expected        *bool              `yaml:"expected,omitempty"`
	VetoedBy        []string           `yaml:"vetoedby,omitempty"`
	AttributeScores map[string]float64 `yaml:"attributescores"`
}

// EvalSummary carries the headline numbers of a run
type EvalSummary struct {
	AverageScore float64 `yaml:"averagescore"`
	Acceptable   int     `yaml:"acceptable"`
	Vetoed       int     `yaml:"vetoed"`
	Failed       int     `yaml:"failed"`
	Precision    float64 `yaml:"precision"`
	Recall       float64 `yaml:"recall"`
	Accuracy     float64 `yaml:"accuracy"`
}

// EvalSpec represents one complete evaluation run
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// Build converts aggregated results into the YAML document layout.
func Build(agg *metrics.AggregateResults, datasetPath string, now time.Time) EvalSpec {
	spec := EvalSpec{
		Config: EvalConfig{
			Profile:     string(agg.Profile),
			CatalogPath: agg.CatalogPath,
			DatasetPath: datasetPath,
			SampleSize:  agg.SampleSize,
			Timestamp:   now.Format("2006-01-02_15-04-05"),
		},
		Summary: EvalSummary{
			AverageScore: agg.AverageScore,
			Acceptable:   agg.AcceptableCount,
			Vetoed:       agg.VetoedCount,
			Failed:       agg.FailureCount,
			Precision:    agg.Confusion.Precision(),
			Recall:       agg.Confusion.Recall(),
			Accuracy:     agg.Confusion.Accuracy(),
		},
		Results: make([]EvalResult, 0, len(agg.Results)),
	}

	for _, r := range agg.Results {
		if r.Error != "" || r.Result == nil {
			continue // Skip failed evaluations
		}

		evalResult := EvalResult{
			Identifier:      r.ID,
			ComponentType:   r.ComponentType,
			OriginalMPN:     r.OriginalMPN,
			CandidateMPN:    r.CandidateMPN,
			Score:           r.Result.Score,
			Acceptable:      r.Result.Acceptable,
			Expected:        r.Expected,
			VetoedBy:        r.Result.VetoedBy,
			AttributeScores: make(map[string]float64, len(r.Result.Matches)),
		}
		for _, m := range r.Result.Matches {
			evalResult.AttributeScores[m.Attribute] = m.Score
		}

		spec.Results = append(spec.Results, evalResult)
	}

	return spec
}

// SaveToYAML writes an evaluation run to <dir>/<profile>-<timestamp>.yaml and
// returns the file path
func SaveToYAML(dir, datasetPath string, agg *metrics.AggregateResults) (string, error) {
	if dir == "" {
		dir = "evals"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	spec := Build(agg, datasetPath, time.Now())
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", spec.Config.Profile, spec.Config.Timestamp))

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	slog.Info("Evaluation results saved", "path", absPath)

	return filename, nil
}
