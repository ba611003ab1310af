// Package scoring decides whether a candidate part can substitute for an
// original one.
//
// Every attribute the component type declares is run through its tolerance
// rule. If any critical attribute is not acceptable the overall score is 0.0.
// Otherwise the per-attribute scores are combined with an importance-weighted
// mean. Attributes the metadata does not declare are ignored.
//
// Scoring is pure: no I/O, no shared state, same result for the same inputs.
package scoring

import (
	"fmt"

	"github.com/lehigh-university-libraries/partmatch/internal/attr"
	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
	"github.com/lehigh-university-libraries/partmatch/internal/tolerance"
)

// Method labels describing how an attribute comparison turned out.
const (
	MethodExact    = "exact"
	MethodWithin   = "within_tolerance"
	MethodPartial  = "partial"
	MethodMismatch = "mismatch"
	MethodMissing  = "missing"
)

// AttributeMatch is the comparison result for a single attribute.
type AttributeMatch struct {
	Attribute  string              `json:"attribute" yaml:"attribute"`
	Importance metadata.Importance `json:"importance" yaml:"importance"`
	Rule       string              `json:"rule" yaml:"rule"`
	Original   attr.Value          `json:"original" yaml:"-"`
	Candidate  attr.Value          `json:"candidate" yaml:"-"`
	Score      float64             `json:"score" yaml:"score"`
	Acceptable bool                `json:"acceptable" yaml:"acceptable"`
	Method     string              `json:"method" yaml:"method"`
	Notes      string              `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Result is the full comparison of a candidate against an original part.
type Result struct {
	ComponentType string           `json:"component_type"`
	Profile       metadata.Profile `json:"profile"`
	Score         float64          `json:"score"`
	Acceptable    bool             `json:"acceptable"`
	Vetoed        bool             `json:"vetoed"`
	VetoedBy      []string         `json:"vetoed_by,omitempty"`
	Matches       []AttributeMatch `json:"matches"`
}

// Match returns the comparison for a named attribute.
func (r *Result) Match(name string) (AttributeMatch, bool) {
	for _, m := range r.Matches {
		if m.Attribute == name {
			return m, true
		}
	}
	return AttributeMatch{}, false
}

// Compare scores candidate against original using md.
func Compare(original, candidate attr.Set, md *metadata.TypeMetadata) *Result {
	attrs := md.Attributes()
	result := &Result{
		ComponentType: md.ComponentType(),
		Profile:       md.DefaultProfile(),
		Matches:       make([]AttributeMatch, 0, len(attrs)),
	}

	// All attributes are scored before the veto check so the breakdown is
	// complete even for rejected candidates.
	var weightedSum, totalWeight float64
	for _, name := range attrs {
		cfg, _ := md.Config(name)
		match := compareAttribute(name, cfg, original.Get(name), candidate.Get(name))
		result.Matches = append(result.Matches, match)

		if cfg.Importance == metadata.Critical && !match.Acceptable {
			result.VetoedBy = append(result.VetoedBy, name)
		}

		w := cfg.Importance.Weight()
		weightedSum += match.Score * w
		totalWeight += w
	}

	if len(result.VetoedBy) > 0 {
		result.Vetoed = true
		result.Score = 0.0
		return result
	}

	if totalWeight > 0 {
		result.Score = clamp01(weightedSum / totalWeight)
	}
	result.Acceptable = result.Score >= md.AcceptanceThreshold()
	return result
}

// Score returns the overall compatibility score in [0,1].
func Score(original, candidate attr.Set, md *metadata.TypeMetadata) float64 {
	return Compare(original, candidate, md).Score
}

// IsAcceptable reports whether candidate can substitute for original.
func IsAcceptable(original, candidate attr.Set, md *metadata.TypeMetadata) bool {
	return Compare(original, candidate, md).Acceptable
}

func compareAttribute(name string, cfg metadata.SpecConfig, original, candidate attr.Value) AttributeMatch {
	score := clamp01(cfg.Rule.Compare(original, candidate))
	match := AttributeMatch{
		Attribute:  name,
		Importance: cfg.Importance,
		Rule:       cfg.Rule.Name(),
		Original:   original,
		Candidate:  candidate,
		Score:      score,
		Acceptable: tolerance.Accepts(cfg.Rule, score),
	}

	switch {
	case original.IsAbsent() && candidate.IsAbsent():
		match.Method = MethodMissing
		match.Notes = "Not extracted for either part"
	case original.IsAbsent():
		match.Method = MethodMissing
		match.Notes = "Not extracted for original part"
	case candidate.IsAbsent():
		match.Method = MethodMissing
		match.Notes = "Not extracted for candidate part"
	case score == 1.0:
		match.Method = MethodExact
	case match.Acceptable:
		match.Method = MethodWithin
		match.Notes = fmt.Sprintf("Acceptable under %s (%.2f)", match.Rule, score)
	case score > 0:
		match.Method = MethodPartial
		match.Notes = fmt.Sprintf("Below acceptance under %s (%.2f)", match.Rule, score)
	default:
		match.Method = MethodMismatch
		match.Notes = fmt.Sprintf("%s vs %s", original.Display(), candidate.Display())
	}

	return match
}

func clamp01(v float64) float64 {
	switch {
	case !(v >= 0): // also catches NaN
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
