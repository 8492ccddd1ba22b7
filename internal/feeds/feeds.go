package feeds

import (
	"context"
	"fmt"

	"secalerts/internal/domain"
)

// Request carries the per-feed parameters a fetcher needs for one pull.
type Request struct {
	Name     string
	URL      string
	Category domain.Category
	Options  map[string]string
}

// Fetcher captures a single feed kind (RSS, KEV, NVD).
type Fetcher interface {
	Kind() string
	Fetch(ctx context.Context, req Request) ([]domain.RawItem, error)
}

// Registry keeps a mapping from feed kinds to their implementations.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[string]Fetcher{}}
}

// Register adds or replaces a fetcher implementation.
func (r *Registry) Register(f Fetcher) {
	if r.fetchers == nil {
		r.fetchers = map[string]Fetcher{}
	}
	r.fetchers[f.Kind()] = f
}

// Resolve returns a fetcher by kind or an error if it is absent.
func (r *Registry) Resolve(kind string) (Fetcher, error) {
	if f, ok := r.fetchers[kind]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("feed kind %s is not registered", kind)
}
