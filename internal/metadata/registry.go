package metadata

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownComponentType is returned by Lookup for unregistered types.
var ErrUnknownComponentType = errors.New("unknown component type")

// Registry maps component-type keys to their metadata. Keys are
// case-insensitive. A Registry is populated once at startup and then only read.
type Registry struct {
	profile Profile
	types   map[string]*TypeMetadata
}

// NewRegistry builds a registry from finalized metadata. A later entry for the
// same component type replaces an earlier one.
func NewRegistry(profile Profile, entries ...*TypeMetadata) *Registry {
	r := &Registry{
		profile: profile,
		types:   make(map[string]*TypeMetadata, len(entries)),
	}
	for _, m := range entries {
		if m == nil {
			continue
		}
		r.types[registryKey(m.ComponentType())] = m
	}
	return r
}

func registryKey(componentType string) string {
	return strings.ToLower(strings.TrimSpace(componentType))
}

// Profile is the scoring context this registry's metadata was written for.
func (r *Registry) Profile() Profile { return r.profile }

// Lookup returns the metadata for componentType.
func (r *Registry) Lookup(componentType string) (*TypeMetadata, error) {
	m, ok := r.types[registryKey(componentType)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponentType, componentType)
	}
	return m, nil
}

// ComponentTypes returns the registered type keys in sorted order.
func (r *Registry) ComponentTypes() []string {
	keys := make([]string, 0, len(r.types))
	for _, m := range r.types {
		keys = append(keys, m.ComponentType())
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) Len() int { return len(r.types) }

// Merge returns a new registry holding r's entries overlaid with other's.
// Neither input is modified.
func (r *Registry) Merge(other *Registry) *Registry {
	merged := NewRegistry(r.profile)
	for k, v := range r.types {
		merged.types[k] = v
	}
	if other != nil {
		for k, v := range other.types {
			merged.types[k] = v
		}
	}
	return merged
}
