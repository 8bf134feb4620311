// Package blocktemplate produces the canonical default specification for each
// block kind. Every call builds a fresh value, so callers may mutate the
// result freely.
package blocktemplate

import (
	"fmt"
	"sort"
	"sync"

	"pagebuilder/internal/domain"
)

// TemplateFunc builds a new default specification.
type TemplateFunc func() domain.BlockSpec

// Factory maps block kinds to their template functions.
type Factory struct {
	mu        sync.RWMutex
	templates map[domain.BlockKind]TemplateFunc
}

// New returns a Factory preloaded with the built-in kinds.
func New() *Factory {
	f := &Factory{templates: make(map[domain.BlockKind]TemplateFunc)}
	for kind, fn := range builtins {
		f.templates[kind] = fn
	}
	return f
}

// Register adds a template for kind. Panics on duplicate registration.
func (f *Factory) Register(kind domain.BlockKind, fn TemplateFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.templates[kind]; exists {
		panic(fmt.Sprintf("blocktemplate: duplicate registration for kind %q", kind))
	}
	f.templates[kind] = fn
}

// Template returns the default specification for kind, or an
// *domain.UnknownKindError when kind is not registered.
func (f *Factory) Template(kind domain.BlockKind) (domain.BlockSpec, error) {
	f.mu.RLock()
	fn, ok := f.templates[kind]
	f.mu.RUnlock()
	if !ok {
		return domain.BlockSpec{}, &domain.UnknownKindError{Kind: kind}
	}
	spec := fn()
	spec.Kind = kind
	return spec, nil
}

// MustTemplate is Template for kinds known to be registered.
func (f *Factory) MustTemplate(kind domain.BlockKind) domain.BlockSpec {
	spec, err := f.Template(kind)
	if err != nil {
		panic(err)
	}
	return spec
}

// Kinds lists registered kinds in lexical order.
func (f *Factory) Kinds() []domain.BlockKind {
	f.mu.RLock()
	defer f.mu.RUnlock()
	kinds := make([]domain.BlockKind, 0, len(f.templates))
	for k := range f.templates {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
