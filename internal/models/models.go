package models

import (
	"time"

	"github.com/lehigh-university-libraries/partmatch/internal/attr"
	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
	"github.com/lehigh-university-libraries/partmatch/internal/scoring"
)

// ScoreRequest is the body of POST /api/score
type ScoreRequest struct {
	ComponentType string           `json:"component_type"`
	Profile       metadata.Profile `json:"profile,omitempty"`
	OriginalMPN   string           `json:"original_mpn,omitempty"`
	CandidateMPN  string           `json:"candidate_mpn,omitempty"`
	Original      attr.Set         `json:"original"`
	Candidate     attr.Set         `json:"candidate"`
}

// Comparison represents one scored original/candidate pair
type Comparison struct {
	ID            string           `json:"id"`
	ComponentType string           `json:"component_type"`
	Profile       metadata.Profile `json:"profile"`
	OriginalMPN   string           `json:"original_mpn,omitempty"`
	CandidateMPN  string           `json:"candidate_mpn,omitempty"`
	Original      attr.Set         `json:"original"`
	Candidate     attr.Set         `json:"candidate"`
	Result        *scoring.Result  `json:"result"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ComponentType describes a registered component type for GET /api/types
type ComponentType struct {
	Name                string          `json:"name"`
	Profile             string          `json:"profile"`
	AcceptanceThreshold float64         `json:"acceptance_threshold"`
	Attributes          []AttributeInfo `json:"attributes"`
}

// AttributeInfo describes one attribute of a component type
type AttributeInfo struct {
	Name       string `json:"name"`
	Importance string `json:"importance"`
	Rule       string `json:"rule"`
}

// DescribeType flattens metadata into its API form
func DescribeType(md *metadata.TypeMetadata) ComponentType {
	ct := ComponentType{
		Name:                md.ComponentType(),
		Profile:             string(md.DefaultProfile()),
		AcceptanceThreshold: md.AcceptanceThreshold(),
	}
	for _, name := range md.Attributes() {
		cfg, _ := md.Config(name)
		ct.Attributes = append(ct.Attributes, AttributeInfo{
			Name:       name,
			Importance: cfg.Importance.String(),
			Rule:       cfg.Rule.Name(),
		})
	}
	return ct
}
