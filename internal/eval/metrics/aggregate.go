package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
	"github.com/lehigh-university-libraries/partmatch/internal/scoring"
)

// EvaluationResult represents the scoring of a single dataset pair
type EvaluationResult struct {
	ID             string          `json:"id"`
	ComponentType  string          `json:"component_type"`
	OriginalMPN    string          `json:"original_mpn"`
	CandidateMPN   string          `json:"candidate_mpn"`
	Result         *scoring.Result `json:"result,omitempty"`
	Expected       *bool           `json:"expected,omitempty"`
	ProcessingTime time.Duration   `json:"processing_time"`
	Error          string          `json:"error,omitempty"` // If scoring failed
}

// Predicted reports the engine's verdict; false when scoring failed.
func (r EvaluationResult) Predicted() bool {
	return r.Result != nil && r.Result.Acceptable
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int `json:"total_records"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`

	AcceptableCount int `json:"acceptable_count"`
	VetoedCount     int `json:"vetoed_count"`

	// Attribute-level statistics keyed by attribute name
	Attributes map[string]*AttributeStats `json:"attributes"`

	// Per component type
	ComponentTypes map[string]*TypeStats `json:"component_types"`

	// Agreement with ground-truth labels, only over labelled pairs
	Confusion ConfusionMatrix `json:"confusion"`

	// Overall
	AverageScore float64 `json:"average_score"`

	// Timing
	AverageProcessingTime time.Duration `json:"average_processing_time"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`

	// Detailed results
	Results []EvaluationResult `json:"results"`

	// Metadata
	EvaluationDate time.Time        `json:"evaluation_date"`
	Profile        metadata.Profile `json:"profile"`
	CatalogPath    string           `json:"catalog_path,omitempty"`
	SampleSize     int              `json:"sample_size"`
}

// AttributeStats contains statistics for a specific attribute
type AttributeStats struct {
	ExactMatches    int       `json:"exact_matches"`
	WithinTolerance int       `json:"within_tolerance"`
	PartialMatches  int       `json:"partial_matches"`
	Mismatches      int       `json:"mismatches"`
	Missing         int       `json:"missing"`
	Vetoes          int       `json:"vetoes"`
	AverageScore    float64   `json:"average_score"`
	Scores          []float64 `json:"-"`
}

// TypeStats summarizes results for one component type
type TypeStats struct {
	Pairs        int     `json:"pairs"`
	Acceptable   int     `json:"acceptable"`
	Vetoed       int     `json:"vetoed"`
	AverageScore float64 `json:"average_score"`
	totalScore   float64
}

// ConfusionMatrix compares engine verdicts with dataset labels
type ConfusionMatrix struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalseNegatives int `json:"false_negatives"`
}

// Labelled returns the number of pairs counted in the matrix.
func (c ConfusionMatrix) Labelled() int {
	return c.TruePositives + c.FalsePositives + c.TrueNegatives + c.FalseNegatives
}

// Precision is the share of accepted pairs that are real substitutes.
func (c ConfusionMatrix) Precision() float64 {
	return ratio(c.TruePositives, c.TruePositives+c.FalsePositives)
}

// Recall is the share of real substitutes the engine accepted.
func (c ConfusionMatrix) Recall() float64 {
	return ratio(c.TruePositives, c.TruePositives+c.FalseNegatives)
}

// Accuracy is the share of labelled pairs where verdict and label agree.
func (c ConfusionMatrix) Accuracy() float64 {
	return ratio(c.TruePositives+c.TrueNegatives, c.Labelled())
}

// F1 is the harmonic mean of precision and recall.
func (c ConfusionMatrix) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func (c *ConfusionMatrix) add(predicted, expected bool) {
	switch {
	case predicted && expected:
		c.TruePositives++
	case predicted && !expected:
		c.FalsePositives++
	case !predicted && expected:
		c.FalseNegatives++
	default:
		c.TrueNegatives++
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// AggregateEvaluationResults aggregates multiple evaluation results
func AggregateEvaluationResults(results []EvaluationResult, profile metadata.Profile, catalogPath string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Attributes:     make(map[string]*AttributeStats),
		ComponentTypes: make(map[string]*TypeStats),
		Results:        results,
		EvaluationDate: time.Now(),
		Profile:        profile,
		CatalogPath:    catalogPath,
		SampleSize:     len(results),
	}

	totalScore := 0.0
	var totalDuration time.Duration
	var successDuration time.Duration

	for _, result := range results {
		totalDuration += result.ProcessingTime

		if result.Error != "" || result.Result == nil {
			agg.FailureCount++
			// A failed pair is still a rejection from the caller's point of view.
			if result.Expected != nil {
				agg.Confusion.add(false, *result.Expected)
			}
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime

		r := result.Result
		totalScore += r.Score
		if r.Acceptable {
			agg.AcceptableCount++
		}
		if r.Vetoed {
			agg.VetoedCount++
		}

		ts, ok := agg.ComponentTypes[r.ComponentType]
		if !ok {
			ts = &TypeStats{}
			agg.ComponentTypes[r.ComponentType] = ts
		}
		ts.Pairs++
		ts.totalScore += r.Score
		if r.Acceptable {
			ts.Acceptable++
		}
		if r.Vetoed {
			ts.Vetoed++
		}

		for _, m := range r.Matches {
			stats, ok := agg.Attributes[m.Attribute]
			if !ok {
				stats = &AttributeStats{Scores: []float64{}}
				agg.Attributes[m.Attribute] = stats
			}
			aggregateAttributeStats(stats, m)
		}
		for _, name := range r.VetoedBy {
			agg.Attributes[name].Vetoes++
		}

		if result.Expected != nil {
			agg.Confusion.add(r.Acceptable, *result.Expected)
		}
	}

	// Calculate averages
	for _, stats := range agg.Attributes {
		stats.AverageScore = calculateAverage(stats.Scores)
	}
	for _, ts := range agg.ComponentTypes {
		if ts.Pairs > 0 {
			ts.AverageScore = ts.totalScore / float64(ts.Pairs)
		}
	}
	if agg.SuccessCount > 0 {
		agg.AverageScore = totalScore / float64(agg.SuccessCount)
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}

	agg.TotalProcessingTime = totalDuration

	return agg
}

// aggregateAttributeStats updates attribute statistics
func aggregateAttributeStats(stats *AttributeStats, match scoring.AttributeMatch) {
	stats.Scores = append(stats.Scores, match.Score)

	switch match.Method {
	case scoring.MethodExact:
		stats.ExactMatches++
	case scoring.MethodWithin:
		stats.WithinTolerance++
	case scoring.MethodPartial:
		stats.PartialMatches++
	case scoring.MethodMismatch:
		stats.Mismatches++
	case scoring.MethodMissing:
		stats.Missing++
	}
}

// calculateAverage calculates the average of a slice of scores
func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	return sum / float64(len(scores))
}

// AttributeNames returns the attribute names seen, sorted.
func (a *AggregateResults) AttributeNames() []string {
	names := make([]string, 0, len(a.Attributes))
	for name := range a.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeNames returns the component types seen, sorted.
func (a *AggregateResults) TypeNames() []string {
	names := make([]string, 0, len(a.ComponentTypes))
	for name := range a.ComponentTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func percentOf(n, total int) float64 {
	return ratio(n, total) * 100
}

// PrintSummary prints a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary() {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("PARTMATCH EVALUATION SUMMARY")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Printf("Profile: %s\n", a.Profile)
	if a.CatalogPath != "" {
		fmt.Printf("Catalog: %s\n", a.CatalogPath)
	}
	fmt.Printf("Sample Size: %d pairs\n", a.SampleSize)
	fmt.Println()

	fmt.Println("PROCESSING STATISTICS")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Total Pairs: %d\n", a.TotalRecords)
	fmt.Printf("Scored: %d (%.1f%%)\n", a.SuccessCount, percentOf(a.SuccessCount, a.TotalRecords))
	fmt.Printf("Failed: %d (%.1f%%)\n", a.FailureCount, percentOf(a.FailureCount, a.TotalRecords))
	fmt.Printf("Acceptable: %d (%.1f%%)\n", a.AcceptableCount, percentOf(a.AcceptableCount, a.SuccessCount))
	fmt.Printf("Vetoed: %d (%.1f%%)\n", a.VetoedCount, percentOf(a.VetoedCount, a.SuccessCount))
	fmt.Printf("Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Printf("Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Println()

	fmt.Println("COMPONENT TYPES")
	fmt.Println(strings.Repeat("-", 70))
	for _, name := range a.TypeNames() {
		ts := a.ComponentTypes[name]
		fmt.Printf("  %-20s pairs=%-5d acceptable=%-5d vetoed=%-5d avg=%.3f\n",
			name, ts.Pairs, ts.Acceptable, ts.Vetoed, ts.AverageScore)
	}
	fmt.Println()

	fmt.Println("ATTRIBUTE-LEVEL RESULTS")
	fmt.Println(strings.Repeat("-", 70))
	for _, name := range a.AttributeNames() {
		printAttributeStats(name, *a.Attributes[name])
	}
	fmt.Println()

	if a.Confusion.Labelled() > 0 {
		fmt.Println("AGREEMENT WITH LABELS")
		fmt.Println(strings.Repeat("-", 70))
		fmt.Printf("Labelled Pairs: %d\n", a.Confusion.Labelled())
		fmt.Printf("TP: %d  FP: %d  TN: %d  FN: %d\n",
			a.Confusion.TruePositives, a.Confusion.FalsePositives,
			a.Confusion.TrueNegatives, a.Confusion.FalseNegatives)
		fmt.Printf("Precision: %.3f\n", a.Confusion.Precision())
		fmt.Printf("Recall: %.3f\n", a.Confusion.Recall())
		fmt.Printf("F1: %.3f\n", a.Confusion.F1())
		fmt.Printf("Accuracy: %.2f%%\n", a.Confusion.Accuracy()*100)
		fmt.Println()
	}

	fmt.Println("OVERALL SCORE")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Average Score: %.2f%% (%.3f)\n", a.AverageScore*100, a.AverageScore)
	fmt.Println(strings.Repeat("=", 70))
}

// printAttributeStats prints statistics for a single attribute
func printAttributeStats(name string, stats AttributeStats) {
	fmt.Printf("\n%s:\n", name)
	fmt.Printf("  Average Score: %.2f%% (%.3f)\n", stats.AverageScore*100, stats.AverageScore)
	fmt.Printf("  Exact: %d\n", stats.ExactMatches)
	fmt.Printf("  Within Tolerance: %d\n", stats.WithinTolerance)
	fmt.Printf("  Partial: %d\n", stats.PartialMatches)
	fmt.Printf("  Mismatch: %d\n", stats.Mismatches)
	fmt.Printf("  Missing: %d\n", stats.Missing)
	if stats.Vetoes > 0 {
		fmt.Printf("  Vetoes: %d\n", stats.Vetoes)
	}
}

// SaveToJSON saves the aggregate results to a JSON file
func (a *AggregateResults) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}

// LoadFromJSON reads results previously written by SaveToJSON
func LoadFromJSON(filepath string) (*AggregateResults, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var agg AggregateResults
	if err := json.Unmarshal(data, &agg); err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}
	return &agg, nil
}

// SaveDetailedReport saves a detailed report with individual results
func (a *AggregateResults) SaveDetailedReport(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "PARTMATCH EVALUATION DETAILED REPORT\n")
	fmt.Fprintf(file, "Generated: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Profile: %s\n", a.Profile)
	separator := strings.Repeat("=", 80)
	fmt.Fprintf(file, "%s\n\n", separator)

	dash := strings.Repeat("-", 80)
	for i, result := range a.Results {
		fmt.Fprintf(file, "PAIR %d: %s\n", i+1, result.ID)
		fmt.Fprintf(file, "%s\n", dash)
		fmt.Fprintf(file, "Component Type: %s\n", result.ComponentType)
		fmt.Fprintf(file, "Original: %s\n", result.OriginalMPN)
		fmt.Fprintf(file, "Candidate: %s\n", result.CandidateMPN)
		fmt.Fprintf(file, "Processing Time: %s\n", result.ProcessingTime)
		if result.Expected != nil {
			fmt.Fprintf(file, "Expected Substitute: %t\n", *result.Expected)
		}

		if result.Error != "" {
			fmt.Fprintf(file, "ERROR: %s\n", result.Error)
		} else if result.Result != nil {
			fmt.Fprintf(file, "\nAttribute Comparisons:\n")
			for _, m := range result.Result.Matches {
				fmt.Fprintf(file, "  %-22s %-8s %.2f (%s) - Original: %s, Candidate: %s\n",
					m.Attribute+":", m.Importance, m.Score, m.Method,
					m.Original.Display(), m.Candidate.Display())
			}

			fmt.Fprintf(file, "\nOverall Score: %.2f%%\n", result.Result.Score*100)
			fmt.Fprintf(file, "Acceptable: %t\n", result.Result.Acceptable)
			if result.Result.Vetoed {
				fmt.Fprintf(file, "Vetoed By: %s\n", strings.Join(result.Result.VetoedBy, ", "))
			}
		}

		fmt.Fprintf(file, "\n%s\n\n", separator)
	}

	return nil
}
