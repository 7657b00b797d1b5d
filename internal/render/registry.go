package render

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps geometry kinds to their builders.
type Registry struct {
	mu sync.RWMutex
	m  map[GeometryKind]Builder
}

func NewRegistry() *Registry { return &Registry{m: map[GeometryKind]Builder{}} }

func (r *Registry) Register(b Builder) {
	if b == nil {
		return
	}
	r.mu.Lock()
	r.m[b.Kind()] = b
	r.mu.Unlock()
}

func (r *Registry) Get(k GeometryKind) (Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.m[k]
	return b, ok
}

// Build looks up the builder for k and builds it.
func (r *Registry) Build(k GeometryKind, spec Spec) (Geometry, Rig, error) {
	b, ok := r.Get(k)
	if !ok {
		return nil, Rig{}, fmt.Errorf("no geometry registered for %q", k)
	}
	g, err := b.Build(spec)
	if err != nil {
		return nil, Rig{}, fmt.Errorf("build %s: %w", k, err)
	}
	return g, b.Rig(spec), nil
}

func (r *Registry) List() []GeometryKind {
	r.mu.RLock()
	out := make([]GeometryKind, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
