package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"secalerts/internal/domain"
	feedreg "secalerts/internal/feeds"
)

// RSSFetcher pulls items from RSS/Atom feeds.
type RSSFetcher struct {
	parser *gofeed.Parser
	now    func() time.Time
}

// NewRSSFetcher wires an HTTP client into the feed parser.
func NewRSSFetcher(client *http.Client) *RSSFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "secalerts/1.0"
	return &RSSFetcher{parser: parser, now: time.Now}
}

// Kind identifies the strategy inside the registry.
func (f *RSSFetcher) Kind() string {
	return "rss"
}

// Fetch parses the configured feed URL and maps every entry into a raw
// item. Entries missing a title or a parseable date get defaults rather
// than being dropped.
func (f *RSSFetcher) Fetch(ctx context.Context, req feedreg.Request) ([]domain.RawItem, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("feed %s has no url", req.Name)
	}

	feed, err := f.parser.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", req.Name, err)
	}

	category := req.Category
	if category == "" {
		category = domain.CategoryNews
	}

	items := make([]domain.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = "Untitled"
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}

		url := entry.Link
		if url == "" {
			url = entry.GUID
		}

		published := f.now().UTC()
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}

		items = append(items, domain.RawItem{
			Source:      req.Name,
			Category:    category,
			Title:       title,
			Summary:     stripHTML(summary),
			URL:         url,
			PublishedAt: published,
			Tags:        []string{},
		})
	}

	return items, nil
}

// stripHTML reduces feed-supplied markup to plain text. Feeds routinely
// embed full HTML fragments in their description fields.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
}
