package pattern

import "sort"

// Registry is a priority-ordered collection of patterns (spec.md §4.2).
// It remains unsorted until Sort is called explicitly.
type Registry struct {
	patterns []*Pattern
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends pattern p. The registry is left unsorted; call Sort
// once registration is complete.
func (r *Registry) Register(p *Pattern) {
	r.patterns = append(r.patterns, p)
}

// Sort stable-sorts patterns by descending priority. Ties keep registration
// order (stable sort over the already-registration-ordered slice), which
// spec.md's Design Notes mark as the authoritative (if test-defined)
// tie-break rule.
func (r *Registry) Sort() {
	sort.SliceStable(r.patterns, func(i, j int) bool {
		return r.patterns[i].Priority > r.patterns[j].Priority
	})
}

// Filtered returns a new registry containing only patterns with
// Priority <= threshold, preserving relative order.
func (r *Registry) Filtered(threshold float64) *Registry {
	out := &Registry{}
	for _, p := range r.patterns {
		if p.Priority <= threshold {
			out.patterns = append(out.patterns, p)
		}
	}
	return out
}

// Patterns returns the current pattern slice, in registry order. Callers
// must not mutate the returned slice.
func (r *Registry) Patterns() []*Pattern {
	return r.patterns
}

// ByName finds a registered pattern by name, used by pass.Manager when a
// dnnl_graph_passes.json document names an explicit pattern order.
func (r *Registry) ByName(name string) (*Pattern, bool) {
	for _, p := range r.patterns {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}
