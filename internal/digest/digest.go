// Package digest renders accumulated items into a markdown document.
package digest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"secalerts/internal/domain"
	"secalerts/internal/ports"
)

// FileWriter renders digests to a markdown file on disk.
type FileWriter struct {
	path string
}

var _ ports.DigestWriter = (*FileWriter)(nil)

// NewFileWriter targets the configured output path.
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

// Write renders the document and returns the path it was written to.
func (w *FileWriter) Write(alerts []domain.ClassifiedItem, digest []domain.Item, generatedAt time.Time) (string, error) {
	if dir := filepath.Dir(w.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create digest dir: %w", err)
		}
	}

	if err := os.WriteFile(w.path, []byte(Render(alerts, digest, generatedAt)), 0o644); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	return w.path, nil
}

// Render produces the digest markdown: an Alerts section carrying each
// item's classification reason, then a compact bullet list of digest
// items.
func Render(alerts []domain.ClassifiedItem, digest []domain.Item, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# Security Alert Digest\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "## Alerts (%d)\n\n", len(alerts))

	for _, alert := range alerts {
		fmt.Fprintf(&b, "### [%s] %s\n\n", alert.Item.Source, alert.Item.Title)
		fmt.Fprintf(&b, "**Reason:** %s\n\n", alert.Reason)
		if alert.Item.Summary != "" {
			fmt.Fprintf(&b, "%s\n\n", alert.Item.Summary)
		}
		if alert.Item.URL != "" {
			fmt.Fprintf(&b, "[Read more](%s)\n\n", alert.Item.URL)
		}
		b.WriteString("---\n\n")
	}

	if len(digest) > 0 {
		fmt.Fprintf(&b, "## Digest Items (%d)\n\n", len(digest))
		for _, item := range digest {
			fmt.Fprintf(&b, "- [%s](%s) - %s\n", item.Title, item.URL, item.Source)
		}
	}

	return b.String()
}
