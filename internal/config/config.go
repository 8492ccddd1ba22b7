package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"secalerts/internal/classify"
)

const (
	defaultInterval = time.Hour

	configPathEnv = "SECALERTS_CONFIG"
	dbPathEnv     = "SECALERTS_DB_PATH"
	ntfyTopicEnv  = "NTFY_TOPIC"
	ntfyBaseEnv   = "NTFY_BASE_URL"
	nvdAPIKeyEnv  = "NVD_API_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Feeds   FeedsConfig   `yaml:"feeds"`
	Filters FiltersConfig `yaml:"filters"`
	Ntfy    NtfyConfig    `yaml:"ntfy"`
	Logging LoggingConfig `yaml:"logging"`
}

// AppConfig describes run mode and local file locations.
type AppConfig struct {
	Mode         string `yaml:"mode"`
	DBPath       string `yaml:"dbPath"`
	DigestOutput string `yaml:"digestOutput"`
	Interval     string `yaml:"interval"`
}

// CycleInterval resolves the interval string, reverting to one hour on
// anything unparseable.
func (a AppConfig) CycleInterval() time.Duration {
	if a.Interval == "" {
		return defaultInterval
	}
	d, err := time.ParseDuration(a.Interval)
	if err != nil || d <= 0 {
		log.Printf("config: invalid interval %q, reverting to %s", a.Interval, defaultInterval)
		return defaultInterval
	}
	return d
}

// FeedsConfig groups settings for all item sources.
type FeedsConfig struct {
	RSS []RSSFeedConfig `yaml:"rss"`
	KEV KEVConfig       `yaml:"kev"`
	NVD NVDConfig       `yaml:"nvd"`
}

// RSSFeedConfig describes a single RSS/Atom feed.
type RSSFeedConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// KEVConfig toggles the CISA known-exploited-vulnerabilities catalog.
// Enabled is a pointer so an absent yaml key keeps the default (on)
// instead of reading as false.
type KEVConfig struct {
	Enabled *bool  `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// IsEnabled defaults to true when the key is absent.
func (k KEVConfig) IsEnabled() bool {
	return k.Enabled == nil || *k.Enabled
}

// NVDConfig wires the NVD CVE API feed.
type NVDConfig struct {
	Enabled       *bool  `yaml:"enabled"`
	URL           string `yaml:"url"`
	ResultsPerRun int    `yaml:"resultsPerRun"`
	APIKey        string `yaml:"apiKey"`
}

// IsEnabled defaults to false when the key is absent.
func (n NVDConfig) IsEnabled() bool {
	return n.Enabled != nil && *n.Enabled
}

// FiltersConfig is the alerting policy input.
type FiltersConfig struct {
	Keywords          []string `yaml:"keywords"`
	DenyKeywords      []string `yaml:"denyKeywords"`
	MinSeverity       float64  `yaml:"minSeverity"`
	AlwaysAlertSource string   `yaml:"alwaysAlertSource"`
}

// Policy copies the filter settings into the classifier's policy bundle,
// including the built-in urgent keyword table.
func (f FiltersConfig) Policy() classify.Policy {
	return classify.Policy{
		Keywords:          f.Keywords,
		DenyKeywords:      f.DenyKeywords,
		MinSeverity:       f.MinSeverity,
		AlwaysAlertSource: f.AlwaysAlertSource,
		UrgentKeywords:    classify.DefaultUrgentKeywords,
	}
}

// NtfyConfig wires all data required to send notifications.
type NtfyConfig struct {
	BaseURL  string            `yaml:"baseUrl"`
	Topic    string            `yaml:"topic"`
	Priority string            `yaml:"priority"`
	Headers  map[string]string `yaml:"headers"`
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. An empty path falls back to the SECALERTS_CONFIG env var.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalizeMode()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dbPathEnv); v != "" {
		c.App.DBPath = v
	}

	if v := os.Getenv(ntfyTopicEnv); v != "" {
		c.Ntfy.Topic = v
	}

	if v := os.Getenv(ntfyBaseEnv); v != "" {
		c.Ntfy.BaseURL = v
	}

	if v := os.Getenv(nvdAPIKeyEnv); v != "" {
		c.Feeds.NVD.APIKey = v
	}
}

func (c *Config) normalizeMode() {
	switch c.App.Mode {
	case "instant", "digest":
	default:
		log.Printf("config: unknown mode %q, reverting to instant", c.App.Mode)
		c.App.Mode = "instant"
	}
}

func mergeConfig(base, override Config) Config {
	if override.App.Mode != "" {
		base.App.Mode = override.App.Mode
	}
	if override.App.DBPath != "" {
		base.App.DBPath = override.App.DBPath
	}
	if override.App.DigestOutput != "" {
		base.App.DigestOutput = override.App.DigestOutput
	}
	if override.App.Interval != "" {
		base.App.Interval = override.App.Interval
	}

	if len(override.Feeds.RSS) > 0 {
		base.Feeds.RSS = override.Feeds.RSS
	}
	if override.Feeds.KEV.Enabled != nil {
		base.Feeds.KEV.Enabled = override.Feeds.KEV.Enabled
	}
	if override.Feeds.KEV.URL != "" {
		base.Feeds.KEV.URL = override.Feeds.KEV.URL
	}
	if override.Feeds.NVD.Enabled != nil {
		base.Feeds.NVD.Enabled = override.Feeds.NVD.Enabled
	}
	if override.Feeds.NVD.URL != "" {
		base.Feeds.NVD.URL = override.Feeds.NVD.URL
	}
	if override.Feeds.NVD.ResultsPerRun > 0 {
		base.Feeds.NVD.ResultsPerRun = override.Feeds.NVD.ResultsPerRun
	}
	if override.Feeds.NVD.APIKey != "" {
		base.Feeds.NVD.APIKey = override.Feeds.NVD.APIKey
	}

	if len(override.Filters.Keywords) > 0 {
		base.Filters.Keywords = override.Filters.Keywords
	}
	if len(override.Filters.DenyKeywords) > 0 {
		base.Filters.DenyKeywords = override.Filters.DenyKeywords
	}
	if override.Filters.MinSeverity > 0 {
		base.Filters.MinSeverity = override.Filters.MinSeverity
	}
	if override.Filters.AlwaysAlertSource != "" {
		base.Filters.AlwaysAlertSource = override.Filters.AlwaysAlertSource
	}

	if override.Ntfy.BaseURL != "" {
		base.Ntfy.BaseURL = override.Ntfy.BaseURL
	}
	if override.Ntfy.Topic != "" {
		base.Ntfy.Topic = override.Ntfy.Topic
	}
	if override.Ntfy.Priority != "" {
		base.Ntfy.Priority = override.Ntfy.Priority
	}
	if len(override.Ntfy.Headers) > 0 {
		base.Ntfy.Headers = override.Ntfy.Headers
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		App: AppConfig{
			Mode:         "instant",
			DBPath:       "data/alerts.sqlite",
			DigestOutput: "data/digest.md",
			Interval:     "1h",
		},
		Feeds: FeedsConfig{
			NVD: NVDConfig{ResultsPerRun: 200},
		},
		Filters: FiltersConfig{
			MinSeverity:       8.8,
			AlwaysAlertSource: "KEV",
		},
		Ntfy: NtfyConfig{
			BaseURL:  "https://ntfy.sh",
			Priority: "high",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
