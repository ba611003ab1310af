package attr

import "sort"

// Set maps attribute names to the values extracted for one part.
// Names are case-sensitive.
type Set map[string]Value

// Get returns the named value, or Absent when it was not extracted.
func (s Set) Get(name string) Value {
	if s == nil {
		return Absent
	}
	return s[name]
}

// Names returns the attribute names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
