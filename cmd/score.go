package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/partmatch/internal/attr"
	"github.com/lehigh-university-libraries/partmatch/internal/scoring"
	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	var flags catalogFlags
	var componentType string
	var original, candidate []string
	var asJSON bool
	var failOnReject bool

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a candidate part against an original",
		Long: `Score a candidate part against an original part of the same component type.

Attributes are given as name=value or name=value:unit. Values that parse as
numbers are compared numerically; anything else is compared as text.
An attribute with an empty value (name=) is treated as not extracted.`,
		Example: `  # 10k 1% 0603 resistor vs a 0805 part
  partmatch score --type resistor \
    --original resistance=10000:ohm --original tolerance=1 --original package=0603 \
    --candidate resistance=10000:ohm --candidate tolerance=1 --candidate package=0805

  # Loose profile, JSON output
  partmatch score --type capacitor --profile design-phase-loose --json \
    --original capacitance=1e-7:F --original voltage_rating=50:V --original dielectric=X7R \
    --candidate capacitance=1e-7:F --candidate voltage_rating=25:V --candidate dielectric=X7R`,
		RunE: func(cmd *cobra.Command, args []string) error {
			originalSet, err := parseSpecs(original)
			if err != nil {
				return fmt.Errorf("--original: %w", err)
			}
			candidateSet, err := parseSpecs(candidate)
			if err != nil {
				return fmt.Errorf("--candidate: %w", err)
			}

			registry, err := flags.load()
			if err != nil {
				return err
			}
			md, err := registry.Lookup(componentType)
			if err != nil {
				return fmt.Errorf("%w (known: %s)", err, strings.Join(registry.ComponentTypes(), ", "))
			}

			result := scoring.Compare(originalSet, candidateSet, md)
			result.Profile = registry.Profile()

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(result); err != nil {
					return err
				}
			} else {
				printResult(out, result)
			}

			if failOnReject && !result.Acceptable {
				return fmt.Errorf("candidate rejected (score %.3f)", result.Score)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&componentType, "type", "t", "", "Component type, e.g. resistor (required)")
	cmd.Flags().StringArrayVarP(&original, "original", "o", nil, "Original part attribute name=value[:unit] (repeatable)")
	cmd.Flags().StringArrayVarP(&candidate, "candidate", "c", nil, "Candidate part attribute name=value[:unit] (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	cmd.Flags().BoolVar(&failOnReject, "fail-on-reject", false, "Exit non-zero when the candidate is not acceptable")

	_ = cmd.MarkFlagRequired("type")

	return cmd
}

// parseSpecs turns name=value[:unit] arguments into an attribute set.
func parseSpecs(specs []string) (attr.Set, error) {
	set := make(attr.Set, len(specs))
	for _, spec := range specs {
		name, rest, ok := strings.Cut(spec, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid attribute %q, expected name=value[:unit]", spec)
		}
		raw, unit, _ := strings.Cut(rest, ":")
		set[name] = attr.Parse(raw, strings.TrimSpace(unit))
	}
	return set, nil
}

func printResult(w io.Writer, result *scoring.Result) {
	verdict := "REJECTED"
	if result.Acceptable {
		verdict = "ACCEPTABLE"
	}

	fmt.Fprintf(w, "Component Type: %s (%s)\n", result.ComponentType, result.Profile)
	fmt.Fprintf(w, "Score:          %.3f\n", result.Score)
	fmt.Fprintf(w, "Verdict:        %s\n", verdict)
	if result.Vetoed {
		fmt.Fprintf(w, "Vetoed By:      %s\n", strings.Join(result.VetoedBy, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-24s %-10s %-20s %-14s %-14s %-6s %s\n", "ATTRIBUTE", "IMPORTANCE", "RULE", "ORIGINAL", "CANDIDATE", "SCORE", "METHOD")
	for _, m := range result.Matches {
		fmt.Fprintf(w, "%-24s %-10s %-20s %-14s %-14s %-6.2f %s\n",
			m.Attribute, m.Importance, m.Rule, m.Original.Display(), m.Candidate.Display(), m.Score, m.Method)
	}
}
