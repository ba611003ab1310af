// Package tolerance implements the comparison policies that decide how close a
// candidate attribute value must be to the original.
//
// Each rule encodes its comparison direction: whether a higher candidate value
// is better, worse, or merely different. Rules are stateless after
// construction and safe for concurrent use.
//
// Comparison never fails. An absent operand scores 0.0, and a non-numeric
// operand passed to a numeric rule falls back to exact matching.
package tolerance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/partmatch/internal/attr"
)

// DefaultAcceptanceThreshold is the minimum score considered acceptable.
const DefaultAcceptanceThreshold = 0.7

var (
	// ErrInvalidRange is returned when a range rule's bounds are out of order or negative.
	ErrInvalidRange = errors.New("invalid range multipliers")

	// ErrInvalidParameter is returned for a negative tolerance or a limit below 1.
	ErrInvalidParameter = errors.New("invalid tolerance parameter")
)

// Rule compares an original attribute value against a candidate's.
type Rule interface {
	// Compare returns a score in [0,1]. It never mutates its inputs.
	Compare(original, candidate attr.Value) float64

	// Name identifies the policy in reports, e.g. "percentage(1%)".
	Name() string
}

// Thresholder is implemented by rules that override DefaultAcceptanceThreshold.
type Thresholder interface {
	AcceptanceThreshold() float64
}

// Threshold returns the acceptance threshold for r.
func Threshold(r Rule) float64 {
	if t, ok := r.(Thresholder); ok {
		return t.AcceptanceThreshold()
	}
	return DefaultAcceptanceThreshold
}

// IsAcceptable reports whether the candidate scores at or above the rule's threshold.
func IsAcceptable(r Rule, original, candidate attr.Value) bool {
	return Accepts(r, r.Compare(original, candidate))
}

// Accepts reports whether an already computed score passes r's threshold.
func Accepts(r Rule, score float64) bool {
	return score >= Threshold(r)-epsilon
}

// exactMatch is shared by Exact and the non-numeric fallback of every numeric rule.
func exactMatch(original, candidate attr.Value) float64 {
	if original.IsAbsent() || candidate.IsAbsent() {
		return 0.0
	}

	o, oNum := original.Float()
	c, cNum := candidate.Float()
	if oNum && cNum {
		if o == c {
			return 1.0
		}
		return 0.0
	}

	if strings.EqualFold(strings.TrimSpace(original.String()), strings.TrimSpace(candidate.String())) {
		return 1.0
	}
	return 0.0
}

// numericPair returns both operands as floats when both are numeric.
func numericPair(original, candidate attr.Value) (o, c float64, ok bool) {
	o, oNum := original.Float()
	c, cNum := candidate.Float()
	return o, c, oNum && cNum
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

// thresholdRule overrides the acceptance threshold of another rule.
type thresholdRule struct {
	Rule
	threshold float64
}

// WithThreshold wraps r so that IsAcceptable uses threshold instead of the default.
func WithThreshold(r Rule, threshold float64) (Rule, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: acceptance threshold %v outside [0,1]", ErrInvalidParameter, threshold)
	}
	return thresholdRule{Rule: r, threshold: threshold}, nil
}

func (t thresholdRule) AcceptanceThreshold() float64 { return t.threshold }
