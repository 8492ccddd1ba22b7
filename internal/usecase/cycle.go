package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"secalerts/internal/classify"
	"secalerts/internal/domain"
	"secalerts/internal/identity"
	"secalerts/internal/ports"
)

// Mode selects how surviving items are routed.
type Mode string

const (
	// ModeInstant delivers each alert-worthy item as its own notification.
	ModeInstant Mode = "instant"
	// ModeDigest accumulates alert and digest items into one document
	// plus a single summary notification.
	ModeDigest Mode = "digest"
)

// Summary reports what one cycle did.
type Summary struct {
	Fetched    int
	Duplicates int
	Alerts     int
	DigestSize int
	Sent       int
	Failed     int
	Duration   time.Duration
}

// CycleDeps wires all driven adapters into the cycle orchestrator.
type CycleDeps struct {
	Source   ports.ItemSource
	Store    ports.SeenStore
	Notifier ports.Notifier
	Digest   ports.DigestWriter
	Policy   classify.Policy
	Mode     Mode
	DryRun   bool
	Priority string
	Logger   *slog.Logger
	Now      func() time.Time
}

// Cycle runs the identity-dedup-classification pipeline once per call.
// It holds no state between runs: the seen store is the only durable
// checkpoint, so an interrupted cycle is safe to simply re-run.
type Cycle struct {
	source   ports.ItemSource
	store    ports.SeenStore
	notifier ports.Notifier
	digest   ports.DigestWriter
	policy   classify.Policy
	mode     Mode
	dryRun   bool
	priority string
	logger   *slog.Logger
	now      func() time.Time
}

// NewCycle constructs the orchestration component.
func NewCycle(deps CycleDeps) *Cycle {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	mode := deps.Mode
	if mode == "" {
		mode = ModeInstant
	}
	return &Cycle{
		source:   deps.Source,
		store:    deps.Store,
		notifier: deps.Notifier,
		digest:   deps.Digest,
		policy:   deps.Policy,
		mode:     mode,
		dryRun:   deps.DryRun,
		priority: deps.Priority,
		logger:   deps.Logger,
		now:      now,
	}
}

// Run executes one pass: fetch, identify, dedup, classify, route,
// deliver, commit. Items are committed as seen only after their
// delivery is confirmed; a failed delivery leaves the item uncommitted
// so the next cycle retries it. Store errors abort the run because
// at-most-once delivery cannot be guaranteed without the store.
func (c *Cycle) Run(ctx context.Context) (Summary, error) {
	start := c.now()
	summary := Summary{}

	raw := c.source.Fetch(ctx)
	summary.Fetched = len(raw)
	c.info("fetch complete", "items", len(raw))

	var alerts []domain.ClassifiedItem
	var digestItems []domain.Item

	for _, r := range raw {
		normalized := domain.Normalize(r, c.now())
		id := identity.AssignID(normalized.Source, normalized.URL, normalized.Title, normalized.PublishedAt)
		item := domain.Identified(normalized, id)

		seen, err := c.store.Exists(ctx, item.ID)
		if err != nil {
			return summary, fmt.Errorf("seen lookup: %w", err)
		}
		if seen {
			summary.Duplicates++
			continue
		}

		outcome := classify.Classify(item, c.policy)
		switch {
		case outcome.Decision == domain.DecisionAlert:
			alerts = append(alerts, domain.ClassifiedItem{Item: item, Reason: outcome.Reason})
		case c.mode == ModeDigest && classify.ShouldDigest(item, c.policy):
			digestItems = append(digestItems, item)
		}
	}

	summary.Alerts = len(alerts)
	summary.DigestSize = len(digestItems)
	c.info("classification complete", "alerts", len(alerts), "digest", len(digestItems), "duplicates", summary.Duplicates)

	var err error
	switch c.mode {
	case ModeDigest:
		err = c.routeDigest(ctx, alerts, digestItems, &summary)
	default:
		err = c.routeInstant(ctx, alerts, &summary)
	}

	summary.Duration = c.now().Sub(start)
	c.info("cycle complete",
		"fetched", summary.Fetched,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"duplicates", summary.Duplicates,
		"duration", summary.Duration)
	return summary, err
}

// routeInstant delivers alerts one by one, committing each on success.
func (c *Cycle) routeInstant(ctx context.Context, alerts []domain.ClassifiedItem, summary *Summary) error {
	for _, alert := range alerts {
		if c.dryRun {
			c.info("[dry run] would send", "title", alert.Item.Title, "reason", alert.Reason)
			summary.Sent++
			continue
		}

		err := c.notifier.Send(ctx, ports.Notification{
			Title:    fmt.Sprintf("[%s] %s", alert.Item.Source, alert.Item.Title),
			Message:  fmt.Sprintf("%s\n\nReason: %s", truncate(alert.Item.Summary, 200), alert.Reason),
			URL:      alert.Item.URL,
			Tags:     []string{string(alert.Item.Category)},
			Priority: c.priority,
		})
		if err != nil {
			summary.Failed++
			c.warn("delivery failed", "title", alert.Item.Title, "error", err)
			continue
		}

		if err := c.commit(ctx, alert.Item); err != nil {
			return err
		}
		summary.Sent++
	}
	return nil
}

// routeDigest merges alert and digest items into one document and one
// summary notification. All accumulated items commit together only
// after that single notification succeeds; a failed notification leaves
// every item uncommitted for the next cycle.
func (c *Cycle) routeDigest(ctx context.Context, alerts []domain.ClassifiedItem, digestItems []domain.Item, summary *Summary) error {
	total := len(alerts) + len(digestItems)
	if total == 0 {
		return nil
	}

	path, err := c.digest.Write(alerts, digestItems, c.now())
	if err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	c.info("digest written", "path", path, "items", total)

	if c.dryRun {
		c.info("[dry run] would send digest", "items", total)
		summary.Sent = total
		return nil
	}

	err = c.notifier.Send(ctx, ports.Notification{
		Title:    fmt.Sprintf("Security Digest: %d items", total),
		Message:  fmt.Sprintf("%d alerts, %d digest items\n\nSee: %s", len(alerts), len(digestItems), path),
		Priority: c.priority,
	})
	if err != nil {
		summary.Failed = total
		c.warn("digest delivery failed", "error", err)
		return nil
	}

	for _, alert := range alerts {
		if err := c.commit(ctx, alert.Item); err != nil {
			return err
		}
	}
	for _, item := range digestItems {
		if err := c.commit(ctx, item); err != nil {
			return err
		}
	}
	summary.Sent = total
	return nil
}

func (c *Cycle) commit(ctx context.Context, item domain.Item) error {
	err := c.store.Commit(ctx, domain.SeenRecord{
		ID:     item.ID,
		SeenAt: c.now().UTC(),
		Source: item.Source,
		Title:  item.Title,
		URL:    item.URL,
	})
	if err != nil {
		return fmt.Errorf("commit seen %s: %w", item.ID, err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func (c *Cycle) info(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Cycle) warn(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
