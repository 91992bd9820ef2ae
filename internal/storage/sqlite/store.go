package sqlite

// Package sqlite backs one ledger with one SQLite database file. The file is
// self-contained: the transaction log, the recurrence rules and the scheduler
// bookkeeping all live in it, which is what lets the registry discover stores
// by scanning a directory.
//
// Schema setup runs on every Open and is idempotent, so re-initializing an
// existing ledger is a no-op. Callers serialize writers per store (see the
// registry's handle); this package only guarantees that each multi-statement
// mutation commits atomically.

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tinwood/ledgerd/internal/errs"
	"github.com/tinwood/ledgerd/internal/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	amount      INTEGER NOT NULL,
	balance     INTEGER NOT NULL,
	description TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_amount ON entries(amount);

CREATE TABLE IF NOT EXISTS rules (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	param       INTEGER NOT NULL,
	amount      INTEGER NOT NULL,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS scheduler_run (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	last_run INTEGER NOT NULL
);
`

// Store is a single ledger's durable log plus its recurrence rules.
type Store struct {
	rw *sql.DB
	ro *sql.DB
}

// Open opens (creating if absent) the database file at path and applies the
// idempotent schema. Writes go through a single connection, since writers are
// already serialized by the registry handle and a second write connection
// only buys SQLITE_BUSY. Reads go through a separate read-only pool so that
// under WAL concurrent readers do not queue behind each other.
func Open(path string) (*Store, error) {
	rw, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, storeErr(err)
	}
	rw.SetMaxOpenConns(1)
	if _, err := rw.Exec(schema); err != nil {
		rw.Close()
		return nil, storeErr(err)
	}
	ro, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		rw.Close()
		return nil, storeErr(err)
	}
	ro.SetMaxOpenConns(4)
	return &Store{rw: rw, ro: ro}, nil
}

// Close releases both database handles.
func (s *Store) Close() error {
	return errors.Join(s.ro.Close(), s.rw.Close())
}

// Append inserts one entry whose running balance extends the current one.
func (s *Store) Append(ctx context.Context, amount int64, description string) (ledger.Entry, error) {
	tx, err := s.rw.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Entry{}, storeErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	var balance int64
	err = tx.QueryRowContext(ctx, `SELECT balance FROM entries ORDER BY seq DESC LIMIT 1`).Scan(&balance)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return ledger.Entry{}, storeErr(err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	e := ledger.Entry{
		Amount:      amount,
		Balance:     balance + amount,
		Description: description,
		CreatedAt:   now,
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO entries (amount, balance, description, created_at)
		VALUES (?, ?, ?, ?)
	`, e.Amount, e.Balance, e.Description, now.Unix())
	if err != nil {
		return ledger.Entry{}, storeErr(err)
	}
	if e.Seq, err = res.LastInsertId(); err != nil {
		return ledger.Entry{}, storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return ledger.Entry{}, storeErr(err)
	}
	return e, nil
}

// Edit rewrites an entry's amount and description and repairs the running
// balance of that entry and every later one in a single cascading update.
// All statements commit together or not at all.
func (s *Store) Edit(ctx context.Context, seq int64, amount int64, description string) error {
	tx, err := s.rw.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	var old int64
	err = tx.QueryRowContext(ctx, `SELECT amount FROM entries WHERE seq = ?`, seq).Scan(&old)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	if err != nil {
		return storeErr(err)
	}
	diff := old - amount

	if _, err := tx.ExecContext(ctx, `
		UPDATE entries SET amount = ?, description = ? WHERE seq = ?
	`, amount, description, seq); err != nil {
		return storeErr(err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE entries SET balance = balance - ? WHERE seq >= ?
	`, diff, seq); err != nil {
		return storeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr(err)
	}
	return nil
}

// Entries returns one page of the debit or credit side, most recent first.
func (s *Store) Entries(ctx context.Context, dir ledger.Direction, page, perPage int) ([]ledger.Entry, error) {
	cmp := "< 0"
	if dir == ledger.Credits {
		cmp = "> 0"
	}
	rows, err := s.ro.QueryContext(ctx, `
		SELECT seq, amount, balance, description, created_at
		FROM entries
		WHERE amount `+cmp+`
		ORDER BY seq DESC
		LIMIT ? OFFSET ?
	`, perPage, page*perPage)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()
	out := make([]ledger.Entry, 0, perPage)
	for rows.Next() {
		var e ledger.Entry
		var created int64
		if err := rows.Scan(&e.Seq, &e.Amount, &e.Balance, &e.Description, &created); err != nil {
			return nil, storeErr(err)
		}
		e.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// Balance returns the latest running balance, 0 for an empty log.
func (s *Store) Balance(ctx context.Context) (int64, error) {
	var balance int64
	err := s.ro.QueryRowContext(ctx, `SELECT balance FROM entries ORDER BY seq DESC LIMIT 1`).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr(err)
	}
	return balance, nil
}

// CreateRule stores a recurrence rule under a fresh opaque ID.
func (s *Store) CreateRule(ctx context.Context, sched ledger.Schedule, amount int64, description string) (ledger.Rule, error) {
	r := ledger.Rule{ID: uuid.New(), Schedule: sched, Amount: amount, Description: description}
	_, err := s.rw.ExecContext(ctx, `
		INSERT INTO rules (id, kind, param, amount, description)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID.String(), string(sched.Kind()), sched.Param(), amount, description)
	if err != nil {
		return ledger.Rule{}, storeErr(err)
	}
	return r, nil
}

// Rules returns all recurrence rules in creation order.
func (s *Store) Rules(ctx context.Context) ([]ledger.Rule, error) {
	rows, err := s.ro.QueryContext(ctx, `
		SELECT id, kind, param, amount, description FROM rules ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()
	out := make([]ledger.Rule, 0)
	for rows.Next() {
		var r ledger.Rule
		var id, kind string
		var param int
		if err := rows.Scan(&id, &kind, &param, &r.Amount, &r.Description); err != nil {
			return nil, storeErr(err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, storeErr(err)
		}
		if r.Schedule, err = ledger.ParseSchedule(kind, param); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRule removes a rule by ID.
func (s *Store) DeleteRule(ctx context.Context, id uuid.UUID) error {
	res, err := s.rw.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id.String())
	if err != nil {
		return storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// LastRun returns the scheduler's last sweep timestamp for this store; ok is
// false when no sweep has been recorded yet.
func (s *Store) LastRun(ctx context.Context) (time.Time, bool, error) {
	var last int64
	err := s.ro.QueryRowContext(ctx, `SELECT last_run FROM scheduler_run WHERE id = 1`).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, storeErr(err)
	}
	return time.Unix(last, 0).UTC(), true, nil
}

// SetLastRun durably overwrites the scheduler's last sweep timestamp.
func (s *Store) SetLastRun(ctx context.Context, t time.Time) error {
	_, err := s.rw.ExecContext(ctx, `
		INSERT INTO scheduler_run (id, last_run) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_run = excluded.last_run
	`, t.Unix())
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func storeErr(err error) error {
	return errors.Join(errs.ErrStorage, err)
}
