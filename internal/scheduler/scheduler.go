// Package scheduler runs the periodic recurrence sweep. Each sweep walks all
// registered ledgers and applies every rule that matches the current calendar
// day but did not match the previous sweep's timestamp, so a rule fires at
// most once per period. Sweeps must occur more often than the shortest
// schedule period (a day), which the default 6h interval comfortably satisfies.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tinwood/ledgerd/internal/ledger"
	"github.com/tinwood/ledgerd/internal/registry"
)

var (
	sweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledgerd",
		Name:      "scheduler_sweeps_total",
		Help:      "Total number of scheduler sweeps",
	})
	ruleFiresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledgerd",
		Name:      "scheduler_rule_fires_total",
		Help:      "Total number of recurrence rules applied",
	})
	storeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledgerd",
		Name:      "scheduler_store_failures_total",
		Help:      "Total number of per-ledger sweep failures",
	})
)

// DefaultInterval is how often sweeps run unless configured otherwise.
const DefaultInterval = 6 * time.Hour

// Scheduler sweeps all registered stores on a fixed period.
type Scheduler struct {
	reg      *registry.Registry
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
	notify   func(name string, e ledger.Entry)
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock injects the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithNotify registers a callback invoked for every rule-driven append.
func WithNotify(fn func(name string, e ledger.Entry)) Option {
	return func(s *Scheduler) { s.notify = fn }
}

// New constructs a scheduler over reg sweeping every interval.
func New(reg *registry.Registry, interval time.Duration, log *slog.Logger, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{reg: reg, interval: interval, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps once immediately and then on every tick until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-t.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep processes every registered ledger once. A failing ledger is logged
// and skipped without touching its last-run marker, so the next sweep
// re-evaluates the same window; it never aborts the sweep for other ledgers.
func (s *Scheduler) Sweep(ctx context.Context) {
	now := s.now()
	sweepsTotal.Inc()
	for _, name := range s.reg.Names() {
		h, err := s.reg.Lookup(name)
		if err != nil {
			continue // racing registration; picked up next sweep
		}
		if err := s.sweepStore(ctx, h, now); err != nil {
			storeFailuresTotal.Inc()
			s.log.Error("sweep failed", "ledger", name, "err", err)
		}
	}
}

// sweepStore holds the write lock for exactly one ledger's sweep: rule
// evaluation, any rule-driven appends and the last-run update are one
// exclusive critical section, released before the next ledger is touched.
func (s *Scheduler) sweepStore(ctx context.Context, h *registry.Handle, now time.Time) error {
	return h.Write(func(st registry.Store) error {
		lastRun, ok, err := st.LastRun(ctx)
		if err != nil {
			return err
		}
		if !ok {
			// First sweep over a fresh ledger only records a baseline;
			// applying rules here would back-fill the current period.
			return st.SetLastRun(ctx, now)
		}
		rules, err := st.Rules(ctx)
		if err != nil {
			return err
		}
		for _, r := range rules {
			if !r.Schedule.Matches(now) || r.Schedule.Matches(lastRun) {
				continue
			}
			e, err := st.Append(ctx, r.Amount, r.Description)
			if err != nil {
				return err
			}
			ruleFiresTotal.Inc()
			s.log.Info("rule fired", "ledger", h.Name(), "rule_id", r.ID, "seq", e.Seq, "amount", r.Amount)
			if s.notify != nil {
				s.notify(h.Name(), e)
			}
		}
		return st.SetLastRun(ctx, now)
	})
}
