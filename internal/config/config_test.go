package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
app:
  mode: digest
  dbPath: /tmp/test-alerts.sqlite
  interval: 30m
feeds:
  rss:
    - name: SecNews
      url: https://example.com/feed.xml
      category: news
  kev:
    enabled: false
  nvd:
    enabled: true
    resultsPerRun: 50
filters:
  keywords: [rce, exchange]
  denyKeywords: [crypto price]
  minSeverity: 9.0
  alwaysAlertSource: KEV
ntfy:
  topic: my-alerts
  priority: urgent
logging:
  level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load("")

	if cfg.App.Mode != "instant" {
		t.Fatalf("default mode should be instant, got %q", cfg.App.Mode)
	}
	if !cfg.Feeds.KEV.IsEnabled() {
		t.Fatalf("kev feed should default to enabled")
	}
	if cfg.Feeds.NVD.IsEnabled() {
		t.Fatalf("nvd feed should default to disabled")
	}
	if cfg.Filters.MinSeverity != 8.8 {
		t.Fatalf("unexpected default min severity: %g", cfg.Filters.MinSeverity)
	}
	if cfg.App.CycleInterval() != time.Hour {
		t.Fatalf("unexpected default interval: %s", cfg.App.CycleInterval())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	cfg := Load(path)

	if cfg.App.Mode != "digest" {
		t.Fatalf("mode not loaded: %q", cfg.App.Mode)
	}
	if cfg.App.CycleInterval() != 30*time.Minute {
		t.Fatalf("interval not loaded: %s", cfg.App.CycleInterval())
	}
	if len(cfg.Feeds.RSS) != 1 || cfg.Feeds.RSS[0].Name != "SecNews" {
		t.Fatalf("rss feeds not loaded: %+v", cfg.Feeds.RSS)
	}
	if cfg.Feeds.KEV.IsEnabled() {
		t.Fatalf("kev explicitly disabled in file")
	}
	if !cfg.Feeds.NVD.IsEnabled() || cfg.Feeds.NVD.ResultsPerRun != 50 {
		t.Fatalf("nvd settings not loaded: %+v", cfg.Feeds.NVD)
	}
	if cfg.Ntfy.Topic != "my-alerts" || cfg.Ntfy.Priority != "urgent" {
		t.Fatalf("ntfy settings not loaded: %+v", cfg.Ntfy)
	}
	if cfg.Ntfy.BaseURL != "https://ntfy.sh" {
		t.Fatalf("base url default lost in merge: %q", cfg.Ntfy.BaseURL)
	}

	policy := cfg.Filters.Policy()
	if policy.MinSeverity != 9.0 || policy.AlwaysAlertSource != "KEV" {
		t.Fatalf("policy not derived from filters: %+v", policy)
	}
	if len(policy.UrgentKeywords) == 0 {
		t.Fatalf("policy must carry the urgent keyword table")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SECALERTS_DB_PATH", "/var/lib/secalerts/alerts.sqlite")
	t.Setenv("NTFY_TOPIC", "env-topic")

	cfg := Load("")
	if cfg.App.DBPath != "/var/lib/secalerts/alerts.sqlite" {
		t.Fatalf("db path env override not applied: %q", cfg.App.DBPath)
	}
	if cfg.Ntfy.Topic != "env-topic" {
		t.Fatalf("topic env override not applied: %q", cfg.Ntfy.Topic)
	}
}

func TestUnknownModeRevertsToInstant(t *testing.T) {
	path := writeConfig(t, "app:\n  mode: hourly\n")
	cfg := Load(path)
	if cfg.App.Mode != "instant" {
		t.Fatalf("unknown mode should revert to instant, got %q", cfg.App.Mode)
	}
}
