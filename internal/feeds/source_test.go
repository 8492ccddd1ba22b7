package feeds

import (
	"context"
	"errors"
	"testing"

	"secalerts/internal/domain"
)

type stubFetcher struct {
	kind  string
	items []domain.RawItem
	err   error
}

func (s *stubFetcher) Kind() string { return s.kind }

func (s *stubFetcher) Fetch(ctx context.Context, req Request) ([]domain.RawItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&stubFetcher{kind: "rss"})

	if _, err := registry.Resolve("rss"); err != nil {
		t.Fatalf("resolve registered kind: %v", err)
	}
	if _, err := registry.Resolve("unknown"); err == nil {
		t.Fatalf("expected error for unregistered kind")
	}
}

func TestMultiSourceIsolatesFailingFeeds(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&stubFetcher{kind: "good", items: []domain.RawItem{
		{Title: "item one"},
		{Title: "item two"},
	}})
	registry.Register(&stubFetcher{kind: "bad", err: errors.New("network down")})

	source := NewMultiSource(registry, []Endpoint{
		{Kind: "bad", Request: Request{Name: "Broken"}},
		{Kind: "good", Request: Request{Name: "Working"}},
		{Kind: "missing", Request: Request{Name: "Unregistered"}},
	}, nil)

	items := source.Fetch(context.Background())
	if len(items) != 2 {
		t.Fatalf("failing feeds must contribute zero items without aborting; got %d", len(items))
	}
}

func TestMultiSourceStampsSource(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&stubFetcher{kind: "good", items: []domain.RawItem{{Title: "unstamped"}}})

	source := NewMultiSource(registry, []Endpoint{
		{Kind: "good", Request: Request{Name: "FeedName"}},
	}, nil)

	items := source.Fetch(context.Background())
	if len(items) != 1 || items[0].Source != "FeedName" {
		t.Fatalf("expected feed name stamped onto items, got %+v", items)
	}
}
