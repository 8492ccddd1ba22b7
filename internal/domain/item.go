package domain

import (
	"strings"
	"time"
)

// Category partitions items by what kind of security signal they carry.
type Category string

const (
	CategoryCVE  Category = "cve"
	CategoryNews Category = "news"
)

// RawItem is what a feed adapter emits: best-effort fields, no
// authoritative identity yet.
type RawItem struct {
	Source      string
	Category    Category
	Title       string
	Summary     string
	URL         string
	PublishedAt time.Time
	Severity    *float64
	Tags        []string
}

// Item is a RawItem stamped with its content-addressed identity by the
// orchestrator. Never mutated after construction.
type Item struct {
	ID          string
	Source      string
	Category    Category
	Title       string
	Summary     string
	URL         string
	PublishedAt time.Time
	Severity    *float64
	Tags        []string
}

// Normalize repairs untrusted adapter output: empty titles become
// "Untitled", nil tags become an empty slice, a zero published time
// falls back to now. Identity must be derived from the normalized
// fields, so this runs before id assignment.
func Normalize(raw RawItem, now time.Time) RawItem {
	out := raw
	if strings.TrimSpace(out.Title) == "" {
		out.Title = "Untitled"
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.PublishedAt.IsZero() {
		out.PublishedAt = now
	}
	out.PublishedAt = out.PublishedAt.UTC()
	return out
}

// Identified stamps a normalized RawItem with its authoritative id,
// discarding any id an adapter may have tentatively assigned.
func Identified(raw RawItem, id string) Item {
	return Item{
		ID:          id,
		Source:      raw.Source,
		Category:    raw.Category,
		Title:       raw.Title,
		Summary:     raw.Summary,
		URL:         raw.URL,
		PublishedAt: raw.PublishedAt,
		Severity:    raw.Severity,
		Tags:        raw.Tags,
	}
}

// SeenRecord is the persisted proof that an item was delivered.
// Created once at commit time, never updated.
type SeenRecord struct {
	ID     string
	SeenAt time.Time
	Source string
	Title  string
	URL    string
}

// Decision is the classifier's disposition for an item.
type Decision string

const (
	DecisionAlert  Decision = "alert"
	DecisionDigest Decision = "digest"
	DecisionDrop   Decision = "drop"
)

// Outcome pairs a decision with the rule that produced it. Reason is
// non-empty for every decision except Drop-by-default.
type Outcome struct {
	Decision Decision
	Reason   string
}

// ClassifiedItem carries an item together with its alert reason through
// routing and digest rendering.
type ClassifiedItem struct {
	Item   Item
	Reason string
}
