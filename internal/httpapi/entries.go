package httpapi

import (
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"

	"github.com/tinwood/ledgerd/internal/service/book"
)

// paging parses page/per_page query params, falling back to defaults.
func paging(r *http.Request) (page, perPage int) {
	perPage = book.DefaultPerPage
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 0 {
		page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 {
		perPage = v
	}
	return page, perPage
}

// credit appends a positive entry.
func (s *Server) credit(w http.ResponseWriter, r *http.Request) {
	req := r.Context().Value(ctxKeyTransaction).(transactionRequest)
	e, err := s.svc.Append(r.Context(), chi.URLParam(r, "ledger"), req.Amount, req.Description)
	if err != nil {
		serviceErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toEntryResponse(e))
}

// debit appends the entry with its amount negated.
func (s *Server) debit(w http.ResponseWriter, r *http.Request) {
	req := r.Context().Value(ctxKeyTransaction).(transactionRequest)
	e, err := s.svc.Append(r.Context(), chi.URLParam(r, "ledger"), -req.Amount, req.Description)
	if err != nil {
		serviceErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toEntryResponse(e))
}

// edit rewrites a historical entry; the running balance of every entry at or
// after it is repaired in the same storage transaction.
func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	req := r.Context().Value(ctxKeyTransaction).(transactionRequest)
	seq, err := strconv.ParseInt(chi.URLParam(r, "seq"), 10, 64)
	if err != nil {
		badRequest(w, "invalid sequence id")
		return
	}
	if err := s.svc.Edit(r.Context(), chi.URLParam(r, "ledger"), seq, req.Amount, req.Description); err != nil {
		serviceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getLedger returns a page of both sides plus the current balance.
func (s *Server) getLedger(w http.ResponseWriter, r *http.Request) {
	page, perPage := paging(r)
	p, err := s.svc.PagedView(r.Context(), chi.URLParam(r, "ledger"), page, perPage)
	if err != nil {
		serviceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toPageResponse(p))
}

// listEntries returns one page of a single side plus the current balance.
func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.Context().Value(ctxKeyListEntries).(listEntriesQuery)
	listing, err := s.svc.Entries(r.Context(), chi.URLParam(r, "ledger"), q.Direction, q.Page, q.PerPage)
	if err != nil {
		serviceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, listingResponse{
		Entries: toEntryResponses(listing.Entries),
		Balance: listing.Balance,
	})
}
