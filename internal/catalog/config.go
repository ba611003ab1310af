// Package catalog holds the component-type catalog: the built-in type
// definitions for each scoring profile, and YAML files that add or override
// types at startup.
//
// A catalog file looks like:
//
//	profile: replacement-strict
//	types:
//	  - component_type: resistor
//	    acceptance_threshold: 0.7
//	    attributes:
//	      - name: resistance
//	        importance: critical
//	        rule: {type: percentage, tolerance: 0.01}
//	      - name: power_rating
//	        importance: high
//	        rule: {type: minimum}
//
// Every definition is validated when the file is loaded; a bad file fails the
// load rather than producing a partial catalog.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
	"github.com/lehigh-university-libraries/partmatch/internal/tolerance"
	"gopkg.in/yaml.v3"
)

// Rule type names accepted in catalog files.
const (
	RuleExact      = "exact"
	RulePercentage = "percentage"
	RuleMinimum    = "minimum"
	RuleMaximum    = "maximum"
	RuleRange      = "range"
)

// ErrUnknownRule is returned for an unrecognised rule type.
var ErrUnknownRule = errors.New("unknown rule type")

// File is the top-level structure of a catalog YAML file.
type File struct {
	Profile string       `yaml:"profile"`
	Types   []Definition `yaml:"types"`
}

// Definition describes one component type.
type Definition struct {
	ComponentType       string                `yaml:"component_type"`
	DefaultProfile      string                `yaml:"default_profile,omitempty"`
	AcceptanceThreshold *float64              `yaml:"acceptance_threshold,omitempty"`
	Attributes          []AttributeDefinition `yaml:"attributes"`
}

// AttributeDefinition describes one attribute of a component type.
type AttributeDefinition struct {
	Name       string         `yaml:"name"`
	Importance string         `yaml:"importance"`
	Rule       RuleDefinition `yaml:"rule"`
}

// RuleDefinition selects a tolerance rule and its parameters.
type RuleDefinition struct {
	Type string `yaml:"type"`

	// Tolerance is the allowed fractional deviation for percentage rules.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Limit is the multiplier cap for maximum rules. Defaults to 1.
	Limit float64 `yaml:"limit,omitempty"`

	// Min and Max are the band multipliers for range rules. Max is required.
	Min float64 `yaml:"min,omitempty"`
	Max float64 `yaml:"max,omitempty"`

	// Threshold overrides the acceptance threshold for this attribute.
	Threshold *float64 `yaml:"threshold,omitempty"`
}

// NewRule constructs the tolerance rule described by d.
func (d RuleDefinition) NewRule() (tolerance.Rule, error) {
	var (
		rule tolerance.Rule
		err  error
	)

	switch strings.ToLower(strings.TrimSpace(d.Type)) {
	case RuleExact, "":
		rule = tolerance.NewExact()
	case RulePercentage:
		rule, err = tolerance.NewPercentage(d.Tolerance)
	case RuleMinimum:
		rule = tolerance.NewMinimumRequired()
	case RuleMaximum:
		limit := d.Limit
		if limit == 0 {
			limit = 1
		}
		rule, err = tolerance.NewMaximumAllowed(limit)
	case RuleRange:
		if d.Max <= 0 {
			return nil, fmt.Errorf("%w: range rule requires a positive max multiplier", tolerance.ErrInvalidRange)
		}
		rule, err = tolerance.NewRange(d.Min, d.Max)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownRule, d.Type)
	}
	if err != nil {
		return nil, err
	}

	if d.Threshold != nil {
		return tolerance.WithThreshold(rule, *d.Threshold)
	}
	return rule, nil
}

// Build validates d and returns the finalized metadata.
func (d Definition) Build() (*metadata.TypeMetadata, error) {
	b := metadata.NewBuilder(d.ComponentType)

	if d.DefaultProfile != "" {
		p, err := metadata.ParseProfile(d.DefaultProfile)
		if err != nil {
			return nil, fmt.Errorf("component type %q: %w", d.ComponentType, err)
		}
		b.WithDefaultProfile(p)
	}
	if d.AcceptanceThreshold != nil {
		b.WithAcceptanceThreshold(*d.AcceptanceThreshold)
	}

	for _, a := range d.Attributes {
		importance, err := metadata.ParseImportance(a.Importance)
		if err != nil {
			return nil, fmt.Errorf("component type %q, attribute %q: %w", d.ComponentType, a.Name, err)
		}
		rule, err := a.Rule.NewRule()
		if err != nil {
			return nil, fmt.Errorf("component type %q, attribute %q: %w", d.ComponentType, a.Name, err)
		}
		b.Add(a.Name, importance, rule)
	}

	return b.Build()
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*metadata.Registry, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}

	profile, err := metadata.ParseProfile(f.Profile)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	if len(f.Types) == 0 {
		return nil, fmt.Errorf("catalog: no component types defined")
	}

	entries := make([]*metadata.TypeMetadata, 0, len(f.Types))
	for _, def := range f.Types {
		if def.DefaultProfile == "" {
			def.DefaultProfile = string(profile)
		}
		md, err := def.Build()
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		entries = append(entries, md)
	}

	return metadata.NewRegistry(profile, entries...), nil
}

// LoadFile reads and validates the catalog file at path.
func LoadFile(path string) (*metadata.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", path, err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("Loaded catalog file", "path", path, "profile", reg.Profile(), "types", reg.Len())
	return reg, nil
}

// Load returns the built-in catalog for profile, overlaid with the types in
// the file at path when path is non-empty.
func Load(profile metadata.Profile, path string) (*metadata.Registry, error) {
	reg, err := Default(profile)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return reg, nil
	}

	custom, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if custom.Profile() != reg.Profile() {
		slog.Warn("Catalog file profile differs from requested profile",
			"path", path, "file_profile", custom.Profile(), "profile", reg.Profile())
	}
	return reg.Merge(custom), nil
}
