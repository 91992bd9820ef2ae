// Package registry owns the name -> ledger store map. It hands out per-store
// handles whose reader/writer guard serializes access to one ledger without
// ever letting contention cross store boundaries: the outer map lock is held
// only long enough to fetch a handle, never across store I/O.
package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tinwood/ledgerd/internal/errs"
	"github.com/tinwood/ledgerd/internal/ledger"
)

// Store is the per-ledger storage contract implemented by the sqlite and
// memory backends. Implementations need not be concurrency-safe on their own;
// the registry's handle guard serializes callers.
type Store interface {
	Append(ctx context.Context, amount int64, description string) (ledger.Entry, error)
	Edit(ctx context.Context, seq int64, amount int64, description string) error
	Entries(ctx context.Context, dir ledger.Direction, page, perPage int) ([]ledger.Entry, error)
	Balance(ctx context.Context) (int64, error)
	CreateRule(ctx context.Context, sched ledger.Schedule, amount int64, description string) (ledger.Rule, error)
	Rules(ctx context.Context) ([]ledger.Rule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	LastRun(ctx context.Context) (time.Time, bool, error)
	SetLastRun(ctx context.Context, t time.Time) error
	Close() error
}

// Opener creates or opens the backing storage at path. Opening an existing
// store must be a no-op for its data (schema setup is idempotent).
type Opener func(path string) (Store, error)

// Handle pairs one store with its reader/writer guard. Read admits concurrent
// readers; Write is exclusive. The guard covers exactly one ledger.
type Handle struct {
	name  string
	mu    sync.RWMutex
	store Store
}

// Name returns the ledger name this handle serves.
func (h *Handle) Name() string { return h.name }

// Read runs fn under the shared read lock.
func (h *Handle) Read(fn func(Store) error) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return fn(h.store)
}

// Write runs fn under the exclusive write lock. Multi-step mutations (the
// cascading edit, a scheduler sweep over this store) belong in one Write call.
func (h *Handle) Write(fn func(Store) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.store)
}

// Registry maps ledger names to handles. Entries are added by Register and
// the startup Discover scan, never removed during the process lifetime.
type Registry struct {
	dataDir string
	open    Opener

	mu      sync.RWMutex
	handles map[string]*Handle
}

// New constructs a registry rooted at dataDir, opening stores with open.
func New(dataDir string, open Opener) *Registry {
	return &Registry{dataDir: dataDir, open: open, handles: make(map[string]*Handle)}
}

// Register creates (or re-opens) the backing storage for name and adds it to
// the map. Registering an existing name is a no-op returning the live handle;
// schema setup is idempotent so restart-time re-initialization is safe.
func (r *Registry) Register(name string) (*Handle, error) {
	if !ledger.ValidName(name) {
		return nil, fmt.Errorf("%w: ledger name %q", errs.ErrInvalid, name)
	}

	r.mu.RLock()
	h, ok := r.handles[name]
	r.mu.RUnlock()
	if ok {
		return h, nil
	}

	st, err := r.open(filepath.Join(r.dataDir, name))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[name]; ok {
		// Lost the race to a concurrent Register; keep the first store.
		_ = st.Close()
		return h, nil
	}
	h = &Handle{name: name, store: st}
	r.handles[name] = h
	return h, nil
}

// Lookup resolves a name to its handle, errs.ErrNotFound if unknown.
func (r *Registry) Lookup(name string) (*Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[name]
	if !ok {
		return nil, fmt.Errorf("%w: ledger %q", errs.ErrNotFound, name)
	}
	return h, nil
}

// Names returns the registered ledger names in lexicographic order, so
// pagination over the listing is stable across calls.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handles))
	for name := range r.handles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Discover scans the data directory once at startup and registers every
// storage file found under its file name. A missing directory is created.
func (r *Registry) Discover() error {
	if err := os.MkdirAll(r.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	files, err := os.ReadDir(r.dataDir)
	if err != nil {
		return fmt.Errorf("scan data dir: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || !ledger.ValidName(f.Name()) || isSidecar(f.Name()) {
			continue
		}
		if _, err := r.Register(f.Name()); err != nil {
			return fmt.Errorf("register %q: %w", f.Name(), err)
		}
	}
	return nil
}

// isSidecar filters SQLite WAL/journal companions out of the directory scan.
func isSidecar(name string) bool {
	return strings.HasSuffix(name, "-wal") ||
		strings.HasSuffix(name, "-shm") ||
		strings.HasSuffix(name, "-journal")
}

// Close closes every registered store.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.handles {
		h.mu.Lock()
		_ = h.store.Close()
		h.mu.Unlock()
	}
}
