package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"secalerts/internal/domain"
	feedreg "secalerts/internal/feeds"
)

// DefaultNVDURL is the NVD 2.0 CVE API endpoint.
const DefaultNVDURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"

const defaultResultsPerRun = 200

type nvdResponse struct {
	Vulnerabilities []struct {
		CVE nvdCVE `json:"cve"`
	} `json:"vulnerabilities"`
}

type nvdCVE struct {
	ID           string `json:"id"`
	Published    string `json:"published"`
	Descriptions []struct {
		Lang  string `json:"lang"`
		Value string `json:"value"`
	} `json:"descriptions"`
	Metrics struct {
		CVSSMetricV31 []nvdMetric `json:"cvssMetricV31"`
		CVSSMetricV30 []nvdMetric `json:"cvssMetricV30"`
		CVSSMetricV2  []nvdMetric `json:"cvssMetricV2"`
	} `json:"metrics"`
}

type nvdMetric struct {
	CVSSData struct {
		BaseScore float64 `json:"baseScore"`
	} `json:"cvssData"`
}

// NVDFetcher pulls recently published CVEs from the NVD API.
type NVDFetcher struct {
	client *http.Client
	now    func() time.Time
}

// NewNVDFetcher wires an HTTP client; a nil client gets a 30s timeout.
func NewNVDFetcher(client *http.Client) *NVDFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &NVDFetcher{client: client, now: time.Now}
}

// Kind identifies the strategy inside the registry.
func (f *NVDFetcher) Kind() string {
	return "nvd"
}

// Fetch queries the API for CVEs published in the last day, capped at
// the configured results_per_run. Options: results_per_run, api_key.
func (f *NVDFetcher) Fetch(ctx context.Context, req feedreg.Request) ([]domain.RawItem, error) {
	base := req.URL
	if base == "" {
		base = DefaultNVDURL
	}

	perRun := defaultResultsPerRun
	if raw := req.Options["results_per_run"]; raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			perRun = parsed
		}
	}

	endpoint, err := buildNVDURL(base, perRun, f.now().UTC())
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "secalerts/1.0")
	if key := req.Options["api_key"]; key != "" {
		httpReq.Header.Set("apiKey", key)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch nvd: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nvd returned %s", resp.Status)
	}

	var payload nvdResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode nvd response: %w", err)
	}

	items := make([]domain.RawItem, 0, len(payload.Vulnerabilities))
	for _, vuln := range payload.Vulnerabilities {
		cve := vuln.CVE
		if cve.ID == "" {
			continue
		}

		summary := ""
		for _, desc := range cve.Descriptions {
			if desc.Lang == "en" {
				summary = desc.Value
				break
			}
		}

		published := f.now().UTC()
		if parsed, err := time.Parse("2006-01-02T15:04:05.000", cve.Published); err == nil {
			published = parsed.UTC()
		}

		items = append(items, domain.RawItem{
			Source:      req.Name,
			Category:    domain.CategoryCVE,
			Title:       cve.ID,
			Summary:     summary,
			URL:         "https://nvd.nist.gov/vuln/detail/" + cve.ID,
			PublishedAt: published,
			Severity:    baseScore(cve),
			Tags:        []string{},
		})
	}

	return items, nil
}

// baseScore picks the newest CVSS metric present; absent metrics leave
// severity unset, never zero.
func baseScore(cve nvdCVE) *float64 {
	for _, metrics := range [][]nvdMetric{
		cve.Metrics.CVSSMetricV31,
		cve.Metrics.CVSSMetricV30,
		cve.Metrics.CVSSMetricV2,
	} {
		if len(metrics) > 0 {
			score := metrics[0].CVSSData.BaseScore
			return &score
		}
	}
	return nil
}

func buildNVDURL(base string, perRun int, now time.Time) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid nvd url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("resultsPerPage", strconv.Itoa(perRun))
	query.Set("pubStartDate", now.Add(-24*time.Hour).Format("2006-01-02T15:04:05.000"))
	query.Set("pubEndDate", now.Format("2006-01-02T15:04:05.000"))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
