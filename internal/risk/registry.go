package risk

import (
	"fmt"
	"sort"
)

// Registry keeps a mapping from scorer names to their implementations.
type Registry struct {
	scorers map[string]Scorer
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scorers: map[string]Scorer{}}
}

// DefaultRegistry holds the static and keyword scorers over the default table.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(NewStaticScorer(nil))
	reg.Register(NewKeywordScorer(nil, nil))
	return reg
}

// Register adds or replaces a scorer implementation.
func (r *Registry) Register(scorer Scorer) {
	if r.scorers == nil {
		r.scorers = map[string]Scorer{}
	}
	r.scorers[scorer.Name()] = scorer
}

// Resolve returns a scorer by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scorer, error) {
	if scorer, ok := r.scorers[name]; ok {
		return scorer, nil
	}
	return nil, fmt.Errorf("scorer %s is not registered", name)
}

// Names lists registered scorers, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scorers))
	for name := range r.scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
