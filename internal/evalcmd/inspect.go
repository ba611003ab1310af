package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/partmatch/internal/attr"
	"github.com/lehigh-university-libraries/partmatch/internal/eval/dataset"
)

func executeInspect(ctx context.Context, w io.Writer, datasetPath string, limit int, interactive bool) error {
	localPath, err := dataset.Resolve(ctx, datasetPath, downloadConfig(false))
	if err != nil {
		return err
	}

	records, err := dataset.NewLoader(localPath).LoadSample(limit)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	fmt.Fprintf(w, "Loaded %d pairs from %s\n", len(records), datasetPath)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)

	reader := bufio.NewReader(os.Stdin)

	for i := range records {
		record := &records[i]

		// Check for context cancellation (e.g., Ctrl+C) at the start of each iteration
		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "\nInspection interrupted.")
			return nil
		default:
		}

		fmt.Fprintf(w, "PAIR %d/%d\n", i+1, len(records))
		fmt.Fprintln(w, strings.Repeat("-", 80))
		fmt.Fprintf(w, "ID:             %s\n", record.ID)
		fmt.Fprintf(w, "Component Type: %s\n", record.ComponentType)
		fmt.Fprintf(w, "Original:       %s %s\n", record.OriginalManufacturer, record.OriginalMPN)
		fmt.Fprintf(w, "Candidate:      %s %s\n", record.CandidateManufacturer, record.CandidateMPN)
		if record.Source != "" {
			fmt.Fprintf(w, "Source:         %s\n", record.Source)
		}
		if record.IsLabelled() {
			fmt.Fprintf(w, "Expected:       %t\n", *record.ExpectedSubstitute)
		} else {
			fmt.Fprintf(w, "Expected:       (unlabelled)\n")
		}
		fmt.Fprintln(w)

		printSpecTable(w, record.OriginalSet(), record.CandidateSet())
		fmt.Fprintln(w)

		if interactive {
			fmt.Fprint(w, "Press Enter to continue to next pair (or Ctrl+C to quit)...")

			inputCh := make(chan struct{})
			go func() {
				_, _ = reader.ReadString('\n')
				close(inputCh)
			}()

			// Wait for either user input (Enter) or context cancellation (Ctrl+C)
			select {
			case <-ctx.Done():
				fmt.Fprintln(w, "\nInspection interrupted.")
				return nil
			case <-inputCh:
				fmt.Fprintln(w)
			}
		}
	}

	return nil
}

// printSpecTable prints both parts' attributes side by side, one row per
// attribute name found on either part.
func printSpecTable(w io.Writer, original, candidate attr.Set) {
	seen := make(map[string]bool)
	var names []string
	for _, set := range []attr.Set{original, candidate} {
		for _, name := range set.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	fmt.Fprintf(w, "%-24s %-24s %-24s\n", "ATTRIBUTE", "ORIGINAL", "CANDIDATE")
	for _, name := range names {
		fmt.Fprintf(w, "%-24s %-24s %-24s\n", name, original.Get(name).Display(), candidate.Get(name).Display())
	}
}
