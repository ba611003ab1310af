package dataset

import (
	"strings"

	"github.com/lehigh-university-libraries/partmatch/internal/attr"
)

// PairRecord is one labelled original/candidate pair from a cross-reference
// dataset. Specs are stored as lists so the same struct reads from JSONL and
// Parquet.
type PairRecord struct {
	// Primary key
	ID string `json:"id" parquet:"id"`

	ComponentType string `json:"component_type" parquet:"component_type"`

	OriginalMPN           string `json:"original_mpn" parquet:"original_mpn"`
	OriginalManufacturer  string `json:"original_manufacturer" parquet:"original_manufacturer"`
	CandidateMPN          string `json:"candidate_mpn" parquet:"candidate_mpn"`
	CandidateManufacturer string `json:"candidate_manufacturer" parquet:"candidate_manufacturer"`

	OriginalSpecs  []SpecEntry `json:"original_specs" parquet:"original_specs,list"`
	CandidateSpecs []SpecEntry `json:"candidate_specs" parquet:"candidate_specs,list"`

	// ExpectedSubstitute is the ground-truth label from the cross-reference
	// source; nil when the pair is unlabelled.
	ExpectedSubstitute *bool `json:"expected_substitute,omitempty" parquet:"expected_substitute,optional"`

	// Source names where the pair came from, e.g. a distributor cross-reference.
	Source string `json:"source,omitempty" parquet:"source"`
}

// SpecEntry is one extracted attribute. Exactly one of Number or Text is set
// when the attribute was extracted; both nil means absent.
type SpecEntry struct {
	Name   string   `json:"name" parquet:"name"`
	Number *float64 `json:"number,omitempty" parquet:"number,optional"`
	Text   *string  `json:"text,omitempty" parquet:"text,optional"`
	Unit   string   `json:"unit,omitempty" parquet:"unit"`
}

// Value converts the entry to an attribute value. A NaN or infinite number,
// which Parquet columns can carry, converts to Absent.
func (e SpecEntry) Value() attr.Value {
	switch {
	case e.Number != nil:
		return attr.Number(*e.Number, e.Unit)
	case e.Text != nil && strings.TrimSpace(*e.Text) != "":
		return attr.Text(*e.Text, e.Unit)
	default:
		return attr.Absent
	}
}

// NumberEntry builds a numeric spec entry.
func NumberEntry(name string, v float64, unit string) SpecEntry {
	return SpecEntry{Name: name, Number: &v, Unit: unit}
}

// TextEntry builds a textual spec entry.
func TextEntry(name, s string) SpecEntry {
	return SpecEntry{Name: name, Text: &s}
}

func toSet(entries []SpecEntry) attr.Set {
	set := make(attr.Set, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		set[e.Name] = e.Value()
	}
	return set
}

// OriginalSet returns the original part's specs as an attribute set.
func (r *PairRecord) OriginalSet() attr.Set { return toSet(r.OriginalSpecs) }

// CandidateSet returns the candidate part's specs as an attribute set.
func (r *PairRecord) CandidateSet() attr.Set { return toSet(r.CandidateSpecs) }

// IsLabelled reports whether the pair carries a ground-truth label.
func (r *PairRecord) IsLabelled() bool { return r.ExpectedSubstitute != nil }
