package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tinwood/ledgerd/internal/events"
	"github.com/tinwood/ledgerd/internal/registry"
	"github.com/tinwood/ledgerd/internal/service/book"
	"github.com/tinwood/ledgerd/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type entryResp struct {
	Seq         int64  `json:"seq"`
	Amount      int64  `json:"amount"`
	Balance     int64  `json:"balance"`
	Description string `json:"description"`
}

type pageResp struct {
	Debits  []entryResp `json:"debits"`
	Credits []entryResp `json:"credits"`
	Balance int64       `json:"balance"`
}

type listingResp struct {
	Entries []entryResp `json:"entries"`
	Balance int64       `json:"balance"`
}

type ruleResp struct {
	ID       string `json:"id"`
	Schedule struct {
		Kind  string `json:"kind"`
		Index int    `json:"index"`
	} `json:"schedule"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func setup(t *testing.T) http.Handler {
	t.Helper()
	reg := registry.New(t.TempDir(), func(string) (registry.Store, error) {
		return memory.New(), nil
	})
	svc := book.New(reg, events.Noop{}, nil, testLogger())
	return New(svc, Options{}, testLogger()).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v: %s", err, rec.Body.String())
	}
	return v
}

func TestInitCreditDebitEdit(t *testing.T) {
	h := setup(t)

	if rec := do(t, h, http.MethodPost, "/api/household/init", nil); rec.Code != http.StatusOK {
		t.Fatalf("init: %d: %s", rec.Code, rec.Body.String())
	}
	// Idempotent re-init.
	if rec := do(t, h, http.MethodPost, "/api/household/init", nil); rec.Code != http.StatusOK {
		t.Fatalf("re-init: %d", rec.Code)
	}

	rec := do(t, h, http.MethodPost, "/api/household/credit", map[string]any{"amount": 100, "description": "paycheck"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("credit: %d: %s", rec.Code, rec.Body.String())
	}
	first := decode[entryResp](t, rec)
	if first.Amount != 100 || first.Balance != 100 {
		t.Fatalf("credit entry: %+v", first)
	}

	rec = do(t, h, http.MethodPost, "/api/household/debit", map[string]any{"amount": 30, "description": "groceries"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("debit: %d: %s", rec.Code, rec.Body.String())
	}
	if e := decode[entryResp](t, rec); e.Amount != -30 || e.Balance != 70 {
		t.Fatalf("debit entry: %+v", e)
	}

	// Edit the first entry down to 80; both balances recompute.
	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/household/edit/%d", first.Seq), map[string]any{"amount": 80, "description": "paycheck"})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit: %d: %s", rec.Code, rec.Body.String())
	}

	page := decode[pageResp](t, do(t, h, http.MethodGet, "/api/household", nil))
	if page.Balance != 50 {
		t.Fatalf("balance after edit = %d, want 50", page.Balance)
	}
	if len(page.Credits) != 1 || page.Credits[0].Amount != 80 || page.Credits[0].Balance != 80 {
		t.Fatalf("credits after edit: %+v", page.Credits)
	}
	if len(page.Debits) != 1 || page.Debits[0].Balance != 50 {
		t.Fatalf("debits after edit: %+v", page.Debits)
	}
}

func TestListEntries_DirectionAndPaging(t *testing.T) {
	h := setup(t)
	do(t, h, http.MethodPost, "/api/household/init", nil)
	do(t, h, http.MethodPost, "/api/household/credit", map[string]any{"amount": 500, "description": "paycheck"})
	do(t, h, http.MethodPost, "/api/household/debit", map[string]any{"amount": 30, "description": "groceries"})
	do(t, h, http.MethodPost, "/api/household/debit", map[string]any{"amount": 10, "description": "coffee"})

	rec := do(t, h, http.MethodGet, "/api/household/entries?direction=debits&page=0&per_page=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d: %s", rec.Code, rec.Body.String())
	}
	listing := decode[listingResp](t, rec)
	if len(listing.Entries) != 1 || listing.Entries[0].Description != "coffee" {
		t.Fatalf("expected most recent debit only: %+v", listing.Entries)
	}
	if listing.Balance != 460 {
		t.Fatalf("balance = %d, want 460", listing.Balance)
	}

	if rec := do(t, h, http.MethodGet, "/api/household/entries?direction=sideways", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad direction: %d", rec.Code)
	}
}

func TestRules_CRUD(t *testing.T) {
	h := setup(t)
	do(t, h, http.MethodPost, "/api/household/init", nil)

	rec := do(t, h, http.MethodPost, "/api/household/cron", map[string]any{
		"schedule":    map[string]any{"kind": "weekly", "index": 5},
		"amount":      1500,
		"description": "allowance",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create rule: %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[ruleResp](t, rec)
	if created.Schedule.Kind != "weekly" || created.Schedule.Index != 5 {
		t.Fatalf("created rule: %+v", created)
	}

	listed := decode[struct {
		Rules []ruleResp `json:"rules"`
	}](t, do(t, h, http.MethodGet, "/api/household/crons", nil))
	if len(listed.Rules) != 1 || listed.Rules[0].ID != created.ID {
		t.Fatalf("listed rules: %+v", listed.Rules)
	}

	if rec := do(t, h, http.MethodDelete, "/api/household/cron/"+created.ID, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete rule: %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodDelete, "/api/household/cron/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d, want 404", rec.Code)
	}

	// Out-of-range weekday is rejected at the boundary.
	rec = do(t, h, http.MethodPost, "/api/household/cron", map[string]any{
		"schedule":    map[string]any{"kind": "weekly", "index": 8},
		"amount":      1,
		"description": "x",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid schedule: %d, want 400", rec.Code)
	}
}

func TestUnknownLedgerIs404(t *testing.T) {
	h := setup(t)
	if rec := do(t, h, http.MethodGet, "/api/nowhere", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get: %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/nowhere/credit", map[string]any{"amount": 1, "description": "x"}); rec.Code != http.StatusNotFound {
		t.Fatalf("credit: %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/ledger/edit/9", map[string]any{"amount": 1, "description": "x"}); rec.Code != http.StatusNotFound {
		t.Fatalf("edit: %d, want 404", rec.Code)
	}
}

func TestListLedgers_Sorted(t *testing.T) {
	h := setup(t)
	for _, name := range []string{"zeta", "alpha"} {
		do(t, h, http.MethodPost, "/api/"+name+"/init", nil)
	}
	out := decode[struct {
		Ledgers []string `json:"ledgers"`
	}](t, do(t, h, http.MethodGet, "/api/list", nil))
	if len(out.Ledgers) != 2 || out.Ledgers[0] != "alpha" || out.Ledgers[1] != "zeta" {
		t.Fatalf("ledgers: %v", out.Ledgers)
	}
}

func TestInit_InvalidName(t *testing.T) {
	h := setup(t)
	if rec := do(t, h, http.MethodPost, "/api/..%2Fescape/init", nil); rec.Code == http.StatusOK {
		t.Fatalf("path-traversal name accepted")
	}
	if rec := do(t, h, http.MethodPost, "/api/.hidden/init", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("dotfile name: %d, want 400", rec.Code)
	}
}
