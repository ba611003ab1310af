// Package metadata declares, per component type, which attributes matter when
// judging a substitute part, how important each one is, and which tolerance
// rule governs it.
//
// A TypeMetadata is accumulated with a Builder and is read-only once built,
// so a single instance may be shared by any number of concurrent comparisons.
package metadata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/partmatch/internal/tolerance"
)

var (
	// ErrNoAttributes is returned when building metadata that declares no attributes.
	ErrNoAttributes = errors.New("component type declares no attributes")

	// ErrInvalidConfig is returned for malformed attribute registrations.
	ErrInvalidConfig = errors.New("invalid attribute configuration")
)

// Profile is an advisory scoring-context tag. The engine never consults it;
// callers use it to pick which metadata to compare with.
type Profile string

const (
	ProfileReplacementStrict Profile = "replacement-strict"
	ProfileDesignPhaseLoose  Profile = "design-phase-loose"
)

// Profiles lists the profiles with built-in component catalogs.
var Profiles = []Profile{ProfileReplacementStrict, ProfileDesignPhaseLoose}

// ParseProfile validates a profile name; empty means replacement-strict.
func ParseProfile(s string) (Profile, error) {
	if s == "" {
		return ProfileReplacementStrict, nil
	}
	for _, p := range Profiles {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown profile %q", s)
}

// SpecConfig pairs an attribute's importance with the rule that compares it.
type SpecConfig struct {
	Importance Importance
	Rule       tolerance.Rule
}

// TypeMetadata is the immutable attribute configuration for one component type.
type TypeMetadata struct {
	componentType       string
	specs               map[string]SpecConfig
	order               []string
	defaultProfile      Profile
	acceptanceThreshold float64
}

func (m *TypeMetadata) ComponentType() string { return m.componentType }

func (m *TypeMetadata) DefaultProfile() Profile { return m.defaultProfile }

// AcceptanceThreshold is the overall score a candidate needs to be acceptable.
func (m *TypeMetadata) AcceptanceThreshold() float64 { return m.acceptanceThreshold }

// Config returns the configuration for a named attribute.
func (m *TypeMetadata) Config(name string) (SpecConfig, bool) {
	cfg, ok := m.specs[name]
	return cfg, ok
}

// Attributes returns the configured attribute names in registration order.
// Re-registered attributes keep the position of their first registration.
func (m *TypeMetadata) Attributes() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// IsCritical reports whether name was registered with Critical importance.
// Unregistered names are never critical.
func (m *TypeMetadata) IsCritical(name string) bool {
	cfg, ok := m.specs[name]
	return ok && cfg.Importance == Critical
}

// CriticalAttributes returns the critical attribute names in registration order.
func (m *TypeMetadata) CriticalAttributes() []string {
	var out []string
	for _, name := range m.order {
		if m.specs[name].Importance == Critical {
			out = append(out, name)
		}
	}
	return out
}

// Builder accumulates attribute registrations for one component type.
// The first registration error is kept and reported by Build.
type Builder struct {
	componentType       string
	specs               map[string]SpecConfig
	order               []string
	defaultProfile      Profile
	acceptanceThreshold float64
	err                 error
}

// NewBuilder starts a metadata definition for componentType.
func NewBuilder(componentType string) *Builder {
	return &Builder{
		componentType:       componentType,
		specs:               make(map[string]SpecConfig),
		defaultProfile:      ProfileReplacementStrict,
		acceptanceThreshold: tolerance.DefaultAcceptanceThreshold,
	}
}

// Add registers an attribute. Registering the same name again replaces the
// earlier configuration.
func (b *Builder) Add(name string, importance Importance, rule tolerance.Rule) *Builder {
	switch {
	case b.err != nil:
		return b
	case name == "":
		b.err = fmt.Errorf("%w: empty attribute name", ErrInvalidConfig)
		return b
	case !importance.Valid():
		b.err = fmt.Errorf("%w: attribute %q has %s", ErrInvalidConfig, name, importance)
		return b
	case rule == nil:
		b.err = fmt.Errorf("%w: attribute %q has no rule", ErrInvalidConfig, name)
		return b
	}

	if _, exists := b.specs[name]; !exists {
		b.order = append(b.order, name)
	}
	b.specs[name] = SpecConfig{Importance: importance, Rule: rule}
	return b
}

// WithDefaultProfile sets the advisory profile tag.
func (b *Builder) WithDefaultProfile(p Profile) *Builder {
	b.defaultProfile = p
	return b
}

// WithAcceptanceThreshold overrides the overall acceptance threshold.
func (b *Builder) WithAcceptanceThreshold(threshold float64) *Builder {
	if b.err == nil && (threshold < 0 || threshold > 1) {
		b.err = fmt.Errorf("%w: acceptance threshold %v outside [0,1]", ErrInvalidConfig, threshold)
	}
	b.acceptanceThreshold = threshold
	return b
}

// Build validates the accumulated registrations and returns read-only metadata.
func (b *Builder) Build() (*TypeMetadata, error) {
	if b.err != nil {
		return nil, fmt.Errorf("component type %q: %w", b.componentType, b.err)
	}
	if strings.TrimSpace(b.componentType) == "" {
		return nil, fmt.Errorf("%w: empty component type", ErrInvalidConfig)
	}
	if len(b.specs) == 0 {
		return nil, fmt.Errorf("component type %q: %w", b.componentType, ErrNoAttributes)
	}

	specs := make(map[string]SpecConfig, len(b.specs))
	for k, v := range b.specs {
		specs[k] = v
	}
	order := make([]string, len(b.order))
	copy(order, b.order)

	return &TypeMetadata{
		componentType:       b.componentType,
		specs:               specs,
		order:               order,
		defaultProfile:      b.defaultProfile,
		acceptanceThreshold: b.acceptanceThreshold,
	}, nil
}

// MustBuild is Build for package-level definitions; it panics on a configuration error.
func (b *Builder) MustBuild() *TypeMetadata {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
