package metadata

import (
	"fmt"
	"strings"
)

// Importance ranks how much an attribute matters when judging a substitute.
// Higher values are more important.
type Importance int

const (
	Low Importance = iota + 1
	Medium
	High
	Critical
)

// Aggregation weights. Their ordering must follow Critical > High > Medium > Low;
// the Critical weight only matters when no critical attribute vetoes.
var importanceWeights = map[Importance]float64{
	Critical: 1.0,
	High:     0.75,
	Medium:   0.5,
	Low:      0.25,
}

// Weight returns the aggregation weight for the importance tier.
func (i Importance) Weight() float64 {
	return importanceWeights[i]
}

func (i Importance) Valid() bool {
	_, ok := importanceWeights[i]
	return ok
}

func (i Importance) String() string {
	switch i {
	case Critical:
		return "critical"
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("importance(%d)", int(i))
	}
}

// ParseImportance accepts "critical", "high", "medium" or "low" in any case.
func ParseImportance(s string) (Importance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return Critical, nil
	case "high":
		return High, nil
	case "medium":
		return Medium, nil
	case "low":
		return Low, nil
	default:
		return 0, fmt.Errorf("unknown importance %q (expected critical, high, medium or low)", s)
	}
}

// MarshalText lets importance tiers appear by name in JSON and YAML output.
func (i Importance) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Importance) UnmarshalText(text []byte) error {
	parsed, err := ParseImportance(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
