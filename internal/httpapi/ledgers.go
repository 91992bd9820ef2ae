package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
)

// initLedger creates the backing storage for a ledger name. Re-initializing
// an existing ledger is a no-op.
func (s *Server) initLedger(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.InitLedger(r.Context(), chi.URLParam(r, "ledger")); err != nil {
		serviceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listLedgers returns all registered ledger names, sorted.
func (s *Server) listLedgers(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, ledgerListResponse{Ledgers: s.svc.Ledgers()})
}
