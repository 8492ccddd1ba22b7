package feeds

import (
	"context"
	"log/slog"

	"secalerts/internal/domain"
	"secalerts/internal/ports"
)

// Endpoint binds a registered fetcher kind to one configured feed.
type Endpoint struct {
	Kind    string
	Request Request
}

// MultiSource aggregates every enabled feed. A failing feed contributes
// zero items and never aborts the others.
type MultiSource struct {
	registry  *Registry
	endpoints []Endpoint
	logger    *slog.Logger
}

var _ ports.ItemSource = (*MultiSource)(nil)

// NewMultiSource wires the fetcher registry with config-defined endpoints.
func NewMultiSource(reg *Registry, endpoints []Endpoint, log *slog.Logger) *MultiSource {
	return &MultiSource{
		registry:  reg,
		endpoints: endpoints,
		logger:    log,
	}
}

// Fetch pulls from every endpoint in order, isolating per-feed failures.
func (s *MultiSource) Fetch(ctx context.Context) []domain.RawItem {
	var aggregated []domain.RawItem
	for _, ep := range s.endpoints {
		fetcher, err := s.registry.Resolve(ep.Kind)
		if err != nil {
			s.warn("feed skipped", "feed", ep.Request.Name, "error", err)
			continue
		}

		items, err := fetcher.Fetch(ctx, ep.Request)
		if err != nil {
			s.warn("feed fetch failed", "feed", ep.Request.Name, "kind", ep.Kind, "error", err)
			continue
		}

		for i := range items {
			if items[i].Source == "" {
				items[i].Source = ep.Request.Name
			}
		}
		s.debug("feed produced items", "feed", ep.Request.Name, "count", len(items))
		aggregated = append(aggregated, items...)
	}
	return aggregated
}

func (s *MultiSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *MultiSource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
