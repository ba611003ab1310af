package tolerance

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lehigh-university-libraries/partmatch/internal/attr"
)

// Scores assigned by the directional rules.
const (
	surplusScore   = 0.95 // candidate exceeds a minimum requirement
	marginalScore  = 0.8  // candidate within 90% of a minimum requirement
	marginalFloor  = 0.9
	underScore     = 0.98 // candidate below a maximum allowance
	limitScore     = 0.7  // candidate exactly at a maximum allowance limit
	inBandScore    = 0.9  // candidate inside a range but not equal
	percentDivisor = 100

	// epsilon absorbs float rounding at band edges, so 100*1.01 counts as
	// exactly 1% over 100.
	epsilon = 1e-9
)

// Exact requires equal values. Text compares case-insensitively.
type Exact struct{}

// NewExact returns the exact-match rule.
func NewExact() Exact { return Exact{} }

func (Exact) Compare(original, candidate attr.Value) float64 {
	return exactMatch(original, candidate)
}

func (Exact) Name() string { return "exact" }

// Percentage accepts candidates within a fractional deviation of the original.
// Between Tolerance and twice Tolerance the score decays linearly to zero.
type Percentage struct {
	tolerance float64
}

// NewPercentage returns a percentage rule. tolerance is a fraction: 0.01 is 1%.
func NewPercentage(tolerance float64) (Percentage, error) {
	if tolerance < 0 || math.IsNaN(tolerance) || math.IsInf(tolerance, 0) {
		return Percentage{}, fmt.Errorf("%w: percentage tolerance %v must be a non-negative fraction", ErrInvalidParameter, tolerance)
	}
	return Percentage{tolerance: tolerance}, nil
}

func (p Percentage) Tolerance() float64 { return p.tolerance }

func (p Percentage) Compare(original, candidate attr.Value) float64 {
	if original.IsAbsent() || candidate.IsAbsent() {
		return 0.0
	}
	o, c, ok := numericPair(original, candidate)
	if !ok {
		return exactMatch(original, candidate)
	}

	if o == 0 {
		if c == 0 {
			return 1.0
		}
		return 0.0
	}

	deviation := math.Abs(c-o) / math.Abs(o)
	switch {
	case deviation <= p.tolerance+epsilon:
		return 1.0
	case deviation >= 2*p.tolerance-epsilon:
		return 0.0
	default:
		return clamp01(1 - (deviation-p.tolerance)/p.tolerance)
	}
}

func (p Percentage) Name() string {
	return "percentage(" + formatPercent(p.tolerance) + ")"
}

// MinimumRequired accepts candidates that meet or exceed the original, such as
// voltage or power ratings. A candidate just short of the original (at least
// 90% of it) is marginal but still acceptable.
type MinimumRequired struct{}

// NewMinimumRequired returns the minimum-required rule.
func NewMinimumRequired() MinimumRequired { return MinimumRequired{} }

func (MinimumRequired) Compare(original, candidate attr.Value) float64 {
	if original.IsAbsent() || candidate.IsAbsent() {
		return 0.0
	}
	o, c, ok := numericPair(original, candidate)
	if !ok {
		return exactMatch(original, candidate)
	}

	switch {
	case c == o:
		return 1.0
	case c > o:
		return surplusScore
	case c >= marginalFloor*o-epsilon*math.Abs(o):
		return marginalScore
	default:
		return 0.0
	}
}

func (MinimumRequired) Name() string { return "minimum" }

// MaximumAllowed accepts candidates at or below the original, such as on
// resistance or leakage current, and tolerates exceeding it up to
// Limit times the original with a score decaying toward 0.7 at the limit.
type MaximumAllowed struct {
	limit float64
}

// NewMaximumAllowed returns a maximum-allowed rule. limit must be at least 1.
func NewMaximumAllowed(limit float64) (MaximumAllowed, error) {
	if limit < 1 || math.IsNaN(limit) || math.IsInf(limit, 0) {
		return MaximumAllowed{}, fmt.Errorf("%w: maximum limit multiplier %v must be >= 1", ErrInvalidParameter, limit)
	}
	return MaximumAllowed{limit: limit}, nil
}

func (m MaximumAllowed) Limit() float64 { return m.limit }

func (m MaximumAllowed) Compare(original, candidate attr.Value) float64 {
	if original.IsAbsent() || candidate.IsAbsent() {
		return 0.0
	}
	o, c, ok := numericPair(original, candidate)
	if !ok {
		return exactMatch(original, candidate)
	}

	if o == 0 {
		if c == 0 {
			return 1.0
		}
		return 0.0
	}

	limit := o * m.limit
	switch {
	case c == o:
		return 1.0
	case c < o:
		return underScore
	case c > limit+epsilon*math.Abs(o):
		return 0.0
	default:
		// limit > o here, since o < c <= limit
		over := (c - o) / (limit - o)
		return clamp01(1 - (1-limitScore)*over)
	}
}

func (m MaximumAllowed) Name() string {
	return "maximum(x" + strconv.FormatFloat(m.limit, 'g', -1, 64) + ")"
}

// Range accepts candidates within [Min*original, Max*original].
type Range struct {
	min float64
	max float64
}

// NewRange returns a range rule. It fails unless 0 <= minMul <= maxMul.
func NewRange(minMul, maxMul float64) (Range, error) {
	if math.IsNaN(minMul) || math.IsNaN(maxMul) || minMul < 0 || maxMul < 0 {
		return Range{}, fmt.Errorf("%w: multipliers must be non-negative (min=%v, max=%v)", ErrInvalidRange, minMul, maxMul)
	}
	if minMul > maxMul {
		return Range{}, fmt.Errorf("%w: min multiplier %v exceeds max multiplier %v", ErrInvalidRange, minMul, maxMul)
	}
	return Range{min: minMul, max: maxMul}, nil
}

func (r Range) Bounds() (minMul, maxMul float64) { return r.min, r.max }

func (r Range) Compare(original, candidate attr.Value) float64 {
	if original.IsAbsent() || candidate.IsAbsent() {
		return 0.0
	}
	o, c, ok := numericPair(original, candidate)
	if !ok {
		return exactMatch(original, candidate)
	}

	if c == o {
		return 1.0
	}
	if o == 0 {
		return 0.0
	}

	lo, hi := r.min*o, r.max*o
	if lo > hi {
		lo, hi = hi, lo
	}
	slack := epsilon * math.Abs(o)
	if c >= lo-slack && c <= hi+slack {
		return inBandScore
	}
	return 0.0
}

func (r Range) Name() string {
	return "range(x" + strconv.FormatFloat(r.min, 'g', -1, 64) + "..x" + strconv.FormatFloat(r.max, 'g', -1, 64) + ")"
}

func formatPercent(fraction float64) string {
	return strconv.FormatFloat(fraction*percentDivisor, 'g', 4, 64) + "%"
}
