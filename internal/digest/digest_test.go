package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"secalerts/internal/domain"
)

func TestRender(t *testing.T) {
	t.Parallel()

	alerts := []domain.ClassifiedItem{{
		Item: domain.Item{
			Source:  "KEV",
			Title:   "CVE-2026-1111: Gateway RCE",
			Summary: "Remote code execution in the admin panel.",
			URL:     "https://example.com/cve",
		},
		Reason: "KEV item (always alert)",
	}}
	digestItems := []domain.Item{{
		Source: "SecNews",
		Title:  "Patch Tuesday roundup",
		URL:    "https://example.com/patch",
	}}

	generated := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)
	out := Render(alerts, digestItems, generated)

	for _, want := range []string{
		"# Security Alert Digest",
		"## Alerts (1)",
		"### [KEV] CVE-2026-1111: Gateway RCE",
		"**Reason:** KEV item (always alert)",
		"[Read more](https://example.com/cve)",
		"## Digest Items (1)",
		"- [Patch Tuesday roundup](https://example.com/patch) - SecNews",
		"2026-03-05T12:00:00Z",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered digest missing %q:\n%s", want, out)
		}
	}
}

func TestRenderNoDigestSection(t *testing.T) {
	t.Parallel()

	out := Render(nil, nil, time.Now())
	if strings.Contains(out, "## Digest Items") {
		t.Fatalf("empty digest list should omit the section")
	}
}

func TestFileWriter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "digest.md")
	writer := NewFileWriter(path)

	got, err := writer.Write(nil, nil, time.Now())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if got != path {
		t.Fatalf("unexpected path: %q", got)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(raw), "# Security Alert Digest") {
		t.Fatalf("written digest missing header")
	}
}
