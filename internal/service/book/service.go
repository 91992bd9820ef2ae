// Package book exposes the core operation set over registered ledgers:
// initialization, appends, cascading edits, paged reads and recurrence rule
// management. Handlers stay thin and call into this package.
package book

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tinwood/ledgerd/internal/events"
	"github.com/tinwood/ledgerd/internal/ledger"
	"github.com/tinwood/ledgerd/internal/registry"
	"github.com/tinwood/ledgerd/internal/worker"
)

// DefaultPerPage is the page size used when the caller does not specify one.
const DefaultPerPage = 20

// Listing is one page of entries plus the ledger's current balance.
type Listing struct {
	Entries []ledger.Entry
	Balance int64
}

// Page is the combined read view: a page of each side plus the balance.
type Page struct {
	Debits  []ledger.Entry
	Credits []ledger.Entry
	Balance int64
}

// Service routes operations through the registry to per-ledger stores and
// emits append events off the request path.
type Service struct {
	reg  *registry.Registry
	pub  events.Publisher
	pool *worker.Pool
	log  *slog.Logger
}

// New constructs the service. pub may be events.Noop{} and pool may be nil
// when event publishing is disabled.
func New(reg *registry.Registry, pub events.Publisher, pool *worker.Pool, log *slog.Logger) *Service {
	return &Service{reg: reg, pub: pub, pool: pool, log: log}
}

// InitLedger creates the backing storage for name and registers it. Calling
// it for an existing ledger is a no-op.
func (s *Service) InitLedger(_ context.Context, name string) error {
	_, err := s.reg.Register(name)
	return err
}

// Append writes one entry extending the running balance.
func (s *Service) Append(ctx context.Context, name string, amount int64, description string) (ledger.Entry, error) {
	h, err := s.reg.Lookup(name)
	if err != nil {
		return ledger.Entry{}, err
	}
	var e ledger.Entry
	err = h.Write(func(st registry.Store) error {
		e, err = st.Append(ctx, amount, description)
		return err
	})
	if err != nil {
		return ledger.Entry{}, err
	}
	s.NotifyAppended(name, e, false)
	return e, nil
}

// Edit rewrites an entry's amount and description; the store repairs the
// running balance of every entry at or after it atomically.
func (s *Service) Edit(ctx context.Context, name string, seq int64, amount int64, description string) error {
	h, err := s.reg.Lookup(name)
	if err != nil {
		return err
	}
	return h.Write(func(st registry.Store) error {
		return st.Edit(ctx, seq, amount, description)
	})
}

// Entries returns one page of the given side, most recent first, plus the
// current balance.
func (s *Service) Entries(ctx context.Context, name string, dir ledger.Direction, page, perPage int) (Listing, error) {
	h, err := s.reg.Lookup(name)
	if err != nil {
		return Listing{}, err
	}
	if page < 0 {
		page = 0
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	var out Listing
	err = h.Read(func(st registry.Store) error {
		if out.Entries, err = st.Entries(ctx, dir, page, perPage); err != nil {
			return err
		}
		out.Balance, err = st.Balance(ctx)
		return err
	})
	return out, err
}

// PagedView returns a page of both sides plus the balance, the shape the
// ledger UI renders.
func (s *Service) PagedView(ctx context.Context, name string, page, perPage int) (Page, error) {
	h, err := s.reg.Lookup(name)
	if err != nil {
		return Page{}, err
	}
	if page < 0 {
		page = 0
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	var out Page
	err = h.Read(func(st registry.Store) error {
		if out.Debits, err = st.Entries(ctx, ledger.Debits, page, perPage); err != nil {
			return err
		}
		if out.Credits, err = st.Entries(ctx, ledger.Credits, page, perPage); err != nil {
			return err
		}
		out.Balance, err = st.Balance(ctx)
		return err
	})
	return out, err
}

// Ledgers returns all registered ledger names, sorted.
func (s *Service) Ledgers() []string { return s.reg.Names() }

// CreateRule stores a recurrence rule on a ledger.
func (s *Service) CreateRule(ctx context.Context, name string, sched ledger.Schedule, amount int64, description string) (ledger.Rule, error) {
	h, err := s.reg.Lookup(name)
	if err != nil {
		return ledger.Rule{}, err
	}
	var r ledger.Rule
	err = h.Write(func(st registry.Store) error {
		r, err = st.CreateRule(ctx, sched, amount, description)
		return err
	})
	return r, err
}

// Rules lists a ledger's recurrence rules in creation order.
func (s *Service) Rules(ctx context.Context, name string) ([]ledger.Rule, error) {
	h, err := s.reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	var out []ledger.Rule
	err = h.Read(func(st registry.Store) error {
		out, err = st.Rules(ctx)
		return err
	})
	return out, err
}

// DeleteRule removes a rule from a ledger.
func (s *Service) DeleteRule(ctx context.Context, name string, id uuid.UUID) error {
	h, err := s.reg.Lookup(name)
	if err != nil {
		return err
	}
	return h.Write(func(st registry.Store) error {
		return st.DeleteRule(ctx, id)
	})
}

// NotifyAppended hands an append event to the publisher without blocking the
// caller. The scheduler uses it for rule-driven appends.
func (s *Service) NotifyAppended(name string, e ledger.Entry, scheduled bool) {
	if s.pool == nil {
		return
	}
	ev := events.EntryAppended{Ledger: name, Entry: e, Scheduled: scheduled, PublishedAt: time.Now().UTC()}
	s.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.pub.Publish(ctx, ev); err != nil {
			s.log.Error("publish append event", "ledger", name, "seq", e.Seq, "err", err)
		}
	})
}
