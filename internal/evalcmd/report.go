package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/partmatch/internal/eval/metrics"
)

func executeReport(w io.Writer, resultsPath, format string) error {
	agg, err := metrics.LoadFromJSON(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch format {
	case "text":
		return printTextReport(w, agg)
	case "json":
		return printJSONReport(w, agg)
	case "csv":
		return printCSVReport(w, agg)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(w io.Writer, agg *metrics.AggregateResults) error {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Part Substitution Evaluation Report")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Profile:      %s\n", agg.Profile)
	fmt.Fprintf(w, "Pairs:        %d\n", agg.TotalRecords)
	fmt.Fprintf(w, "Scored:       %d\n", agg.SuccessCount)
	fmt.Fprintf(w, "Failed:       %d\n", agg.FailureCount)
	fmt.Fprintf(w, "Acceptable:   %d\n", agg.AcceptableCount)
	fmt.Fprintf(w, "Vetoed:       %d\n", agg.VetoedCount)
	fmt.Fprintf(w, "Avg Score:    %.2f%%\n", agg.AverageScore*100)

	if agg.Confusion.Labelled() > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Precision:    %.3f\n", agg.Confusion.Precision())
		fmt.Fprintf(w, "Recall:       %.3f\n", agg.Confusion.Recall())
		fmt.Fprintf(w, "Accuracy:     %.3f\n", agg.Confusion.Accuracy())
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Attribute Scores:")
	for _, name := range agg.AttributeNames() {
		stats := agg.Attributes[name]
		fmt.Fprintf(w, "  %s: %.2f%% (vetoes: %d, missing: %d)\n", name, stats.AverageScore*100, stats.Vetoes, stats.Missing)
	}

	fmt.Fprintln(w, "\nDetailed Results:")
	fmt.Fprintln(w, "========================================")

	for i, result := range agg.Results {
		fmt.Fprintf(w, "\n[%d] Pair ID: %s (%s)\n", i+1, result.ID, result.ComponentType)

		if result.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", result.Error)
			continue
		}
		if result.Result == nil {
			continue
		}

		fmt.Fprintf(w, "  %s -> %s\n", result.OriginalMPN, result.CandidateMPN)
		fmt.Fprintf(w, "  Score: %.2f%%  Acceptable: %t\n", result.Result.Score*100, result.Result.Acceptable)
		if result.Expected != nil && *result.Expected != result.Result.Acceptable {
			fmt.Fprintf(w, "  Disagrees with label (expected %t)\n", *result.Expected)
		}
		if result.Result.Vetoed {
			fmt.Fprintf(w, "  Vetoed By: %s\n", strings.Join(result.Result.VetoedBy, ", "))
		}

		// Show attributes that held the score down
		for _, m := range result.Result.Matches {
			if m.Acceptable {
				continue
			}
			fmt.Fprintf(w, "    %s (%s, %.2f): %s vs %s\n",
				m.Attribute, m.Importance, m.Score, m.Original.Display(), m.Candidate.Display())
		}
	}

	return nil
}

func printJSONReport(w io.Writer, agg *metrics.AggregateResults) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(agg)
}

func printCSVReport(w io.Writer, agg *metrics.AggregateResults) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	attributes := agg.AttributeNames()

	header := []string{"ID", "Component Type", "Original MPN", "Candidate MPN", "Score", "Acceptable", "Expected", "Vetoed By", "Error"}
	for _, name := range attributes {
		header = append(header, "Attr_"+name)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range agg.Results {
		expected := ""
		if result.Expected != nil {
			expected = fmt.Sprintf("%t", *result.Expected)
		}

		row := []string{result.ID, result.ComponentType, result.OriginalMPN, result.CandidateMPN}

		if result.Error != "" || result.Result == nil {
			row = append(row, "0", "false", expected, "", result.Error)
		} else {
			row = append(row,
				fmt.Sprintf("%.4f", result.Result.Score),
				fmt.Sprintf("%t", result.Result.Acceptable),
				expected,
				strings.Join(result.Result.VetoedBy, ";"),
				"",
			)
		}

		for _, name := range attributes {
			cell := ""
			if result.Result != nil {
				if m, ok := result.Result.Match(name); ok {
					cell = fmt.Sprintf("%.4f", m.Score)
				}
			}
			row = append(row, cell)
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}
