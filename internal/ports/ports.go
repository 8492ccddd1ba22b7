package ports

import (
	"context"
	"time"

	"secalerts/internal/domain"
)

// ItemSource pulls fresh raw items from all enabled feeds.
type ItemSource interface {
	Fetch(ctx context.Context) []domain.RawItem
}

// SeenStore is the durable dedup authority: the single source of truth
// for whether an item identity was ever delivered.
type SeenStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Commit(ctx context.Context, record domain.SeenRecord) error
	Count(ctx context.Context) (int, error)
}

// Notification is the outbound payload handed to a delivery channel.
type Notification struct {
	Title    string
	Message  string
	URL      string
	Tags     []string
	Priority string
}

// Notifier delivers a single notification. A non-nil error means the
// delivery did not happen and the item must not be committed as seen.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// DigestWriter renders the accumulated alert and digest items into a
// durable artifact and reports where it was written.
type DigestWriter interface {
	Write(alerts []domain.ClassifiedItem, digest []domain.Item, generatedAt time.Time) (string, error)
}

// Scheduler controls when cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
