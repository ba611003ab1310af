package metrics

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/partmatch/internal/attr"
	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
	"github.com/lehigh-university-libraries/partmatch/internal/scoring"
	"github.com/lehigh-university-libraries/partmatch/internal/tolerance"
)

func resistorMetadata(t *testing.T) *metadata.TypeMetadata {
	t.Helper()
	pct, err := tolerance.NewPercentage(0.01)
	if err != nil {
		t.Fatalf("NewPercentage failed: %v", err)
	}
	return metadata.NewBuilder("resistor").
		Add("resistance", metadata.Critical, pct).
		Add("package", metadata.Medium, tolerance.NewExact()).
		MustBuild()
}

func resistor(ohms float64, pkg string) attr.Set {
	return attr.Set{
		"resistance": attr.Number(ohms, "ohm"),
		"package":    attr.Text(pkg, ""),
	}
}

func label(b bool) *bool { return &b }

func sampleResults(t *testing.T) []EvaluationResult {
	md := resistorMetadata(t)
	original := resistor(10000, "0603")

	return []EvaluationResult{
		{
			ID:             "same",
			ComponentType:  "resistor",
			OriginalMPN:    "RC0603FR-0710KL",
			CandidateMPN:   "ERJ-3EKF1002V",
			Result:         scoring.Compare(original, resistor(10000, "0603"), md),
			Expected:       label(true),
			ProcessingTime: 5 * time.Millisecond,
		},
		{
			ID:             "wrong-value",
			ComponentType:  "resistor",
			OriginalMPN:    "RC0603FR-0710KL",
			CandidateMPN:   "RC0603FR-071KL",
			Result:         scoring.Compare(original, resistor(1000, "0603"), md),
			Expected:       label(false),
			ProcessingTime: 3 * time.Millisecond,
		},
		{
			ID:             "wrong-package",
			ComponentType:  "resistor",
			OriginalMPN:    "RC0603FR-0710KL",
			CandidateMPN:   "RC0805FR-0710KL",
			Result:         scoring.Compare(original, resistor(10000, "0805"), md),
			Expected:       label(true),
			ProcessingTime: 4 * time.Millisecond,
		},
		{
			ID:             "unknown-type",
			ComponentType:  "thermistor",
			Error:          "unknown component type",
			ProcessingTime: 1 * time.Millisecond,
		},
	}
}

func TestAggregateEvaluationResults(t *testing.T) {
	agg := AggregateEvaluationResults(sampleResults(t), metadata.ProfileReplacementStrict, "")

	// Check basic stats
	if agg.TotalRecords != 4 {
		t.Errorf("Expected TotalRecords=4, got %d", agg.TotalRecords)
	}
	if agg.SuccessCount != 3 {
		t.Errorf("Expected SuccessCount=3, got %d", agg.SuccessCount)
	}
	if agg.FailureCount != 1 {
		t.Errorf("Expected FailureCount=1, got %d", agg.FailureCount)
	}
	if agg.AcceptableCount != 1 {
		t.Errorf("Expected AcceptableCount=1, got %d", agg.AcceptableCount)
	}
	if agg.VetoedCount != 1 {
		t.Errorf("Expected VetoedCount=1, got %d", agg.VetoedCount)
	}
	if agg.Profile != metadata.ProfileReplacementStrict {
		t.Errorf("Expected Profile=%s, got %s", metadata.ProfileReplacementStrict, agg.Profile)
	}

	// Check attribute stats
	resistance := agg.Attributes["resistance"]
	if resistance == nil {
		t.Fatal("Expected resistance stats")
	}
	if resistance.ExactMatches != 2 {
		t.Errorf("Expected resistance.ExactMatches=2, got %d", resistance.ExactMatches)
	}
	if resistance.Mismatches != 1 {
		t.Errorf("Expected resistance.Mismatches=1, got %d", resistance.Mismatches)
	}
	if resistance.Vetoes != 1 {
		t.Errorf("Expected resistance.Vetoes=1, got %d", resistance.Vetoes)
	}

	pkg := agg.Attributes["package"]
	if pkg.ExactMatches != 2 || pkg.Mismatches != 1 {
		t.Errorf("Expected package exact=2 mismatch=1, got %d/%d", pkg.ExactMatches, pkg.Mismatches)
	}
	if pkg.Vetoes != 0 {
		t.Errorf("Expected no vetoes on a medium attribute, got %d", pkg.Vetoes)
	}

	names := agg.AttributeNames()
	if len(names) != 2 || names[0] != "package" || names[1] != "resistance" {
		t.Errorf("Expected sorted attribute names, got %v", names)
	}

	// Check component type stats
	rs := agg.ComponentTypes["resistor"]
	if rs == nil || rs.Pairs != 3 || rs.Vetoed != 1 || rs.Acceptable != 1 {
		t.Errorf("Unexpected resistor stats: %+v", rs)
	}

	// Check overall score: 1.0, 0.0 and 1.0/1.5
	expectedAvg := (1.0 + 0.0 + 1.0/1.5) / 3.0
	if math.Abs(agg.AverageScore-expectedAvg) > 1e-9 {
		t.Errorf("Expected AverageScore=%.3f, got %.3f", expectedAvg, agg.AverageScore)
	}

	// Check timing
	if agg.TotalProcessingTime != 13*time.Millisecond {
		t.Errorf("Expected TotalProcessingTime=13ms, got %s", agg.TotalProcessingTime)
	}
	if agg.AverageProcessingTime != 4*time.Millisecond {
		t.Errorf("Expected AverageProcessingTime=4ms, got %s", agg.AverageProcessingTime)
	}
}

func TestConfusionMatrix(t *testing.T) {
	agg := AggregateEvaluationResults(sampleResults(t), metadata.ProfileReplacementStrict, "")
	c := agg.Confusion

	if c.TruePositives != 1 || c.TrueNegatives != 1 || c.FalseNegatives != 1 || c.FalsePositives != 0 {
		t.Fatalf("Unexpected confusion matrix: %+v", c)
	}
	if c.Labelled() != 3 {
		t.Errorf("Expected 3 labelled pairs, got %d", c.Labelled())
	}
	if c.Precision() != 1.0 {
		t.Errorf("Expected precision 1.0, got %.3f", c.Precision())
	}
	if c.Recall() != 0.5 {
		t.Errorf("Expected recall 0.5, got %.3f", c.Recall())
	}
	if math.Abs(c.Accuracy()-2.0/3.0) > 1e-9 {
		t.Errorf("Expected accuracy 0.667, got %.3f", c.Accuracy())
	}
	if math.Abs(c.F1()-2.0/3.0) > 1e-9 {
		t.Errorf("Expected F1 0.667, got %.3f", c.F1())
	}

	var empty ConfusionMatrix
	if empty.Precision() != 0 || empty.Recall() != 0 || empty.F1() != 0 || empty.Accuracy() != 0 {
		t.Error("Expected an empty matrix to report zeros")
	}
}

func TestFailedLabelledPairCountsAsRejection(t *testing.T) {
	results := []EvaluationResult{
		{ID: "x", Error: "boom", Expected: label(true)},
	}
	agg := AggregateEvaluationResults(results, metadata.ProfileReplacementStrict, "")
	if agg.Confusion.FalseNegatives != 1 {
		t.Errorf("Expected a false negative, got %+v", agg.Confusion)
	}
}

func TestCalculateAverage(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		expected float64
	}{
		{
			name:     "normal scores",
			scores:   []float64{0.5, 0.75, 1.0},
			expected: 0.75,
		},
		{
			name:     "empty scores",
			scores:   []float64{},
			expected: 0.0,
		},
		{
			name:     "single score",
			scores:   []float64{0.75},
			expected: 0.75,
		},
		{
			name:     "zeros",
			scores:   []float64{0.0, 0.0, 0.0},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calculateAverage(tt.scores)
			if result != tt.expected {
				t.Errorf("calculateAverage(%v) = %.2f, want %.2f",
					tt.scores, result, tt.expected)
			}
		})
	}
}

func TestAggregateAttributeStats(t *testing.T) {
	stats := AttributeStats{
		Scores: []float64{},
	}

	methods := []string{
		scoring.MethodExact,
		scoring.MethodWithin,
		scoring.MethodPartial,
		scoring.MethodMismatch,
		scoring.MethodMissing,
	}
	for _, m := range methods {
		aggregateAttributeStats(&stats, scoring.AttributeMatch{Score: 0.5, Method: m})
	}

	if stats.ExactMatches != 1 || stats.WithinTolerance != 1 || stats.PartialMatches != 1 ||
		stats.Mismatches != 1 || stats.Missing != 1 {
		t.Errorf("Expected one of each method, got %+v", stats)
	}
	if len(stats.Scores) != len(methods) {
		t.Errorf("Expected %d scores, got %d", len(methods), len(stats.Scores))
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "test_results.json")

	agg := AggregateEvaluationResults(sampleResults(t), metadata.ProfileDesignPhaseLoose, "types.yaml")
	if err := agg.SaveToJSON(jsonPath); err != nil {
		t.Fatalf("SaveToJSON failed: %v", err)
	}

	loaded, err := LoadFromJSON(jsonPath)
	if err != nil {
		t.Fatalf("LoadFromJSON failed: %v", err)
	}

	if loaded.Profile != metadata.ProfileDesignPhaseLoose {
		t.Errorf("Expected profile to survive, got %s", loaded.Profile)
	}
	if len(loaded.Results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(loaded.Results))
	}
	if loaded.Confusion != agg.Confusion {
		t.Errorf("Expected confusion %+v, got %+v", agg.Confusion, loaded.Confusion)
	}

	m, ok := loaded.Results[1].Result.Match("resistance")
	if !ok {
		t.Fatal("Expected resistance match in loaded result")
	}
	if v, _ := m.Candidate.Float(); v != 1000 {
		t.Errorf("Expected candidate resistance 1000, got %v", m.Candidate)
	}
	if m.Importance != metadata.Critical {
		t.Errorf("Expected critical importance, got %s", m.Importance)
	}

	if _, err := LoadFromJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestSaveDetailedReport(t *testing.T) {
	reportPath := filepath.Join(t.TempDir(), "test_report.txt")

	agg := AggregateEvaluationResults(sampleResults(t), metadata.ProfileReplacementStrict, "")
	if err := agg.SaveDetailedReport(reportPath); err != nil {
		t.Fatalf("SaveDetailedReport failed: %v", err)
	}

	content, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	contentStr := string(content)

	expected := []string{
		"PARTMATCH EVALUATION DETAILED REPORT",
		"PAIR 1: same",
		"Candidate: ERJ-3EKF1002V",
		"Vetoed By: resistance",
		"ERROR: unknown component type",
	}
	for _, s := range expected {
		if !strings.Contains(contentStr, s) {
			t.Errorf("Report missing %q", s)
		}
	}
}
