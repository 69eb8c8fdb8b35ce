// Package prompts resolves prompt templates by an explicit attribute
// cascade so a department- or use-case-specific override wins over the
// generic template, and the generic template always exists as a fallback.
package prompts

import (
	"fmt"
)

// Wildcard matches any attribute value in a registered template key.
const Wildcard = "*"

// ResolutionContext carries the business attributes a caller resolves
// against. Empty values are treated as wildcards.
type ResolutionContext struct {
	LOB        string
	Department string
	UseCase    string
	Process    string
}

// Key identifies a registered template.
type Key struct {
	Domain     string
	Category   string
	Name       string
	LOB        string
	Department string
	UseCase    string
	Process    string
}

// Source supplies templates for keys. Lookup order across sources is
// registration order; within a source the key must match exactly.
type Source interface {
	Lookup(key Key) (string, bool)
}

// MemorySource is a map-backed Source.
type MemorySource struct {
	templates map[Key]string
}

func NewMemorySource() *MemorySource {
	return &MemorySource{templates: make(map[Key]string)}
}

func (s *MemorySource) Register(key Key, template string) {
	s.templates[key] = template
}

func (s *MemorySource) Lookup(key Key) (string, bool) {
	t, ok := s.templates[key]
	return t, ok
}

// Registry resolves templates through its sources with attribute
// relaxation.
type Registry struct {
	sources []Source
}

func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: sources}
}

// AddSource appends a source consulted after the existing ones.
func (r *Registry) AddSource(s Source) {
	r.sources = append(r.sources, s)
}

// Resolve finds the most specific template for the given domain, category,
// and name under ctx. The relaxation cascade tries, in order: the exact
// attribute tuple, then with process wildcarded, then also use_case, then
// also department, then also lob. The first hit wins; no hit is an error.
func (r *Registry) Resolve(domain, category, name string, ctx ResolutionContext) (string, error) {
	for _, key := range r.cascade(domain, category, name, ctx) {
		for _, src := range r.sources {
			if t, ok := src.Lookup(key); ok {
				return t, nil
			}
		}
	}
	return "", fmt.Errorf("no template registered for %s/%s/%s", domain, category, name)
}

func (r *Registry) cascade(domain, category, name string, ctx ResolutionContext) []Key {
	norm := func(v string) string {
		if v == "" {
			return Wildcard
		}
		return v
	}
	base := Key{
		Domain:     domain,
		Category:   category,
		Name:       name,
		LOB:        norm(ctx.LOB),
		Department: norm(ctx.Department),
		UseCase:    norm(ctx.UseCase),
		Process:    norm(ctx.Process),
	}

	keys := []Key{base}

	relaxed := base
	relaxed.Process = Wildcard
	keys = append(keys, relaxed)

	relaxed.UseCase = Wildcard
	keys = append(keys, relaxed)

	relaxed.Department = Wildcard
	keys = append(keys, relaxed)

	relaxed.LOB = Wildcard
	keys = append(keys, relaxed)

	// Deduplicate keys that collapsed together when ctx had empty fields.
	seen := make(map[Key]bool, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
