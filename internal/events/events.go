// Package events defines the append-event stream emitted by the service.
// Publishing is best-effort and asynchronous; the ledger itself is the source
// of truth.
package events

import (
	"context"
	"time"

	"github.com/tinwood/ledgerd/internal/ledger"
)

// EntryAppended is emitted after an entry is durably written, whether it came
// from the API or from a recurrence rule.
type EntryAppended struct {
	Ledger      string       `json:"ledger"`
	Entry       ledger.Entry `json:"entry"`
	Scheduled   bool         `json:"scheduled"`
	PublishedAt time.Time    `json:"published_at"`
}

// Publisher delivers append events to an external stream.
type Publisher interface {
	Publish(ctx context.Context, ev EntryAppended) error
	Close() error
}

// Noop is the publisher used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, EntryAppended) error { return nil }
func (Noop) Close() error                                 { return nil }
