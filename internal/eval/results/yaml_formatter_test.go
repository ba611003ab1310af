package results

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/partmatch/internal/eval/metrics"
	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
	"github.com/lehigh-university-libraries/partmatch/internal/scoring"
	"gopkg.in/yaml.v3"
)

func sampleAggregate() *metrics.AggregateResults {
	yes := true
	results := []metrics.EvaluationResult{
		{
			ID:            "p1",
			ComponentType: "resistor",
			OriginalMPN:   "RC0603FR-0710KL",
			CandidateMPN:  "ERJ-3EKF1002V",
			Expected:      &yes,
			Result: &scoring.Result{
				ComponentType: "resistor",
				Score:         0.9,
				Acceptable:    true,
				Matches: []scoring.AttributeMatch{
					{Attribute: "resistance", Score: 1.0, Method: scoring.MethodExact},
					{Attribute: "power_rating", Score: 0.8, Method: scoring.MethodWithin},
				},
			},
		},
		{ID: "p2", Error: "unknown component type"},
	}
	return metrics.AggregateEvaluationResults(results, metadata.ProfileReplacementStrict, "")
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	spec := Build(sampleAggregate(), "pairs.jsonl", now)

	if spec.Config.Timestamp != "2026-03-01_12-30-00" {
		t.Errorf("Unexpected timestamp %s", spec.Config.Timestamp)
	}
	if spec.Config.Profile != "replacement-strict" {
		t.Errorf("Unexpected profile %s", spec.Config.Profile)
	}
	if len(spec.Results) != 1 {
		t.Fatalf("Expected failed pairs to be skipped, got %d results", len(spec.Results))
	}
	if spec.Results[0].AttributeScores["power_rating"] != 0.8 {
		t.Errorf("Unexpected attribute scores %v", spec.Results[0].AttributeScores)
	}
	if spec.Summary.Failed != 1 || spec.Summary.Precision != 1.0 {
		t.Errorf("Unexpected summary %+v", spec.Summary)
	}
}

func TestSaveToYAML(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveToYAML(dir, "pairs.jsonl", sampleAggregate())
	if err != nil {
		t.Fatalf("SaveToYAML failed: %v", err)
	}
	if !strings.HasPrefix(path, dir) || !strings.HasSuffix(path, ".yaml") {
		t.Errorf("Unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read YAML: %v", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("Failed to parse YAML: %v", err)
	}
	if spec.Config.DatasetPath != "pairs.jsonl" {
		t.Errorf("Unexpected dataset path %s", spec.Config.DatasetPath)
	}
	if len(spec.Results) != 1 || spec.Results[0].Identifier != "p1" {
		t.Errorf("Unexpected results %+v", spec.Results)
	}
}
