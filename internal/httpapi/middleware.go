package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tinwood/ledgerd/internal/ledger"
)

type ctxKey string

const ctxKeyTransaction ctxKey = "validatedTransaction"
const ctxKeyRule ctxKey = "validatedRule"
const ctxKeyListEntries ctxKey = "validatedListEntries"

// validateTransaction parses the credit/debit/edit body and stores it in the
// request context for the handler to use.
func (s *Server) validateTransaction() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req transactionRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyTransaction, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateRule parses the rule body and validates the schedule at the
// boundary, so matching logic never sees an out-of-range index.
func (s *Server) validateRule() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req ruleRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			sched, err := ledger.ParseSchedule(req.Schedule.Kind, req.Schedule.Index)
			if err != nil {
				writeErr(w, http.StatusBadRequest, "invalid schedule", "invalid_schedule")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyRule, validatedRule{
				schedule:    sched,
				amount:      req.Amount,
				description: req.Description,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type validatedRule struct {
	schedule    ledger.Schedule
	amount      int64
	description string
}

// listEntriesQuery holds validated query params for GET /{ledger}/entries.
type listEntriesQuery struct {
	Direction ledger.Direction
	Page      int
	PerPage   int
}

// validateListEntries parses and validates query params for the directional
// listing.
func (s *Server) validateListEntries() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			dir, err := ledger.ParseDirection(q.Get("direction"))
			if err != nil {
				badRequest(w, "direction must be debits or credits")
				return
			}
			query := listEntriesQuery{Direction: dir}
			query.Page, query.PerPage = paging(r)
			ctx := context.WithValue(r.Context(), ctxKeyListEntries, query)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
