package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"secalerts/internal/domain"
	feedreg "secalerts/internal/feeds"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Security News</title>
    <item>
      <title>Critical RCE in Exchange</title>
      <link>https://example.com/rce</link>
      <description>&lt;p&gt;A &lt;b&gt;critical&lt;/b&gt; flaw was discovered.&lt;/p&gt;</description>
      <pubDate>Thu, 05 Mar 2026 09:00:00 GMT</pubDate>
    </item>
    <item>
      <link>https://example.com/untitled</link>
      <description>No title on this one.</description>
    </item>
  </channel>
</rss>`

func TestRSSFetcher(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	fetcher := NewRSSFetcher(server.Client())
	fixedNow := time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)
	fetcher.now = func() time.Time { return fixedNow }

	items, err := fetcher.Fetch(context.Background(), feedreg.Request{
		Name:     "SecNews",
		URL:      server.URL + "/feed.xml",
		Category: domain.CategoryNews,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "Critical RCE in Exchange" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.Summary != "A critical flaw was discovered." {
		t.Fatalf("html not stripped from summary: %q", first.Summary)
	}
	if first.URL != "https://example.com/rce" {
		t.Fatalf("unexpected url: %q", first.URL)
	}
	if first.Source != "SecNews" {
		t.Fatalf("unexpected source: %q", first.Source)
	}
	want := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("unexpected published time: %v", first.PublishedAt)
	}
	if first.Tags == nil {
		t.Fatalf("tags must never be nil")
	}

	second := items[1]
	if second.Title != "Untitled" {
		t.Fatalf("missing title should default to Untitled, got %q", second.Title)
	}
	if !second.PublishedAt.Equal(fixedNow) {
		t.Fatalf("missing date should default to now, got %v", second.PublishedAt)
	}
}

func TestRSSFetcherRequiresURL(t *testing.T) {
	t.Parallel()

	fetcher := NewRSSFetcher(nil)
	if _, err := fetcher.Fetch(context.Background(), feedreg.Request{Name: "broken"}); err == nil {
		t.Fatalf("expected error for missing url")
	}
}

func TestRSSFetcherServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewRSSFetcher(server.Client())
	_, err := fetcher.Fetch(context.Background(), feedreg.Request{Name: "down", URL: server.URL})
	if err == nil {
		t.Fatalf("expected error from failing feed")
	}
}
