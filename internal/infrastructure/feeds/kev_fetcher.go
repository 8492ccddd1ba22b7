package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"secalerts/internal/domain"
	feedreg "secalerts/internal/feeds"
)

// DefaultKEVURL is CISA's known-exploited-vulnerabilities catalog.
const DefaultKEVURL = "https://www.cisa.gov/sites/default/files/feeds/known_exploited_vulnerabilities.json"

type kevCatalog struct {
	Vulnerabilities []kevEntry `json:"vulnerabilities"`
}

type kevEntry struct {
	CVEID             string `json:"cveID"`
	VendorProject     string `json:"vendorProject"`
	Product           string `json:"product"`
	VulnerabilityName string `json:"vulnerabilityName"`
	DateAdded         string `json:"dateAdded"`
	ShortDescription  string `json:"shortDescription"`
}

// KEVFetcher pulls the CISA KEV catalog. Catalog entries are CVEs that
// are known to be exploited in the wild; the catalog carries no CVSS
// score, so severity stays unset.
type KEVFetcher struct {
	client *http.Client
	now    func() time.Time
}

// NewKEVFetcher wires an HTTP client; a nil client gets a 30s timeout.
func NewKEVFetcher(client *http.Client) *KEVFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &KEVFetcher{client: client, now: time.Now}
}

// Kind identifies the strategy inside the registry.
func (f *KEVFetcher) Kind() string {
	return "kev"
}

// Fetch downloads and maps the catalog.
func (f *KEVFetcher) Fetch(ctx context.Context, req feedreg.Request) ([]domain.RawItem, error) {
	url := req.URL
	if url == "" {
		url = DefaultKEVURL
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "secalerts/1.0")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch kev catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kev catalog returned %s", resp.Status)
	}

	var catalog kevCatalog
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decode kev catalog: %w", err)
	}

	items := make([]domain.RawItem, 0, len(catalog.Vulnerabilities))
	for _, entry := range catalog.Vulnerabilities {
		if entry.CVEID == "" {
			continue
		}

		title := entry.VulnerabilityName
		if title == "" {
			title = entry.CVEID
		}

		summary := entry.ShortDescription
		if entry.VendorProject != "" || entry.Product != "" {
			summary = strings.TrimSpace(fmt.Sprintf("%s %s: %s", entry.VendorProject, entry.Product, entry.ShortDescription))
		}

		published := f.now().UTC()
		if parsed, err := time.Parse("2006-01-02", entry.DateAdded); err == nil {
			published = parsed.UTC()
		}

		items = append(items, domain.RawItem{
			Source:      req.Name,
			Category:    domain.CategoryCVE,
			Title:       fmt.Sprintf("%s: %s", entry.CVEID, title),
			Summary:     summary,
			URL:         "https://nvd.nist.gov/vuln/detail/" + entry.CVEID,
			PublishedAt: published,
			Tags:        []string{"kev"},
		})
	}

	return items, nil
}
