package memory

// Package memory provides a simple in-memory store used for development and
// tests. It mirrors the sqlite store's behavior so the service, scheduler and
// HTTP tests can run without touching the filesystem.
import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tinwood/ledgerd/internal/errs"
	"github.com/tinwood/ledgerd/internal/ledger"
)

// Store is an in-memory ledger store guarded by an RWMutex.
type Store struct {
	mu      sync.RWMutex
	entries []ledger.Entry
	rules   []ledger.Rule
	lastRun time.Time
	hasRun  bool
	nextSeq int64
	// now is swappable so tests control entry timestamps.
	now func() time.Time
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{nextSeq: 1, now: time.Now}
}

// SetClock overrides the timestamp source for tests.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) Close() error { return nil }

// Append inserts one entry extending the running balance.
func (s *Store) Append(_ context.Context, amount int64, description string) (ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var balance int64
	if n := len(s.entries); n > 0 {
		balance = s.entries[n-1].Balance
	}
	e := ledger.Entry{
		Seq:         s.nextSeq,
		Amount:      amount,
		Balance:     balance + amount,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}
	s.nextSeq++
	s.entries = append(s.entries, e)
	return e, nil
}

// Edit rewrites an entry and cascades the balance correction to it and every
// later entry, as the sqlite store does in one SQL transaction.
func (s *Store) Edit(_ context.Context, seq int64, amount int64, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.entries {
		if s.entries[i].Seq == seq {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errs.ErrNotFound
	}
	diff := s.entries[idx].Amount - amount
	s.entries[idx].Amount = amount
	s.entries[idx].Description = description
	for i := idx; i < len(s.entries); i++ {
		s.entries[i].Balance -= diff
	}
	return nil
}

// Entries returns one page of the debit or credit side, most recent first.
func (s *Store) Entries(_ context.Context, dir ledger.Direction, page, perPage int) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Entry, 0, perPage)
	skip := page * perPage
	for i := len(s.entries) - 1; i >= 0 && len(out) < perPage; i-- {
		e := s.entries[i]
		if dir == ledger.Debits && e.Amount >= 0 {
			continue
		}
		if dir == ledger.Credits && e.Amount <= 0 {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Balance returns the latest running balance, 0 for an empty log.
func (s *Store) Balance(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := len(s.entries); n > 0 {
		return s.entries[n-1].Balance, nil
	}
	return 0, nil
}

// CreateRule stores a recurrence rule under a fresh ID.
func (s *Store) CreateRule(_ context.Context, sched ledger.Schedule, amount int64, description string) (ledger.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := ledger.Rule{ID: uuid.New(), Schedule: sched, Amount: amount, Description: description}
	s.rules = append(s.rules, r)
	return r, nil
}

// Rules returns all rules in creation order.
func (s *Store) Rules(_ context.Context) ([]ledger.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Rule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

// DeleteRule removes a rule by ID.
func (s *Store) DeleteRule(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

// LastRun returns the recorded sweep timestamp, ok=false if none yet.
func (s *Store) LastRun(_ context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.hasRun, nil
}

// SetLastRun overwrites the recorded sweep timestamp.
func (s *Store) SetLastRun(_ context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = t
	s.hasRun = true
	return nil
}
