package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// createRule stores a recurrence rule on a ledger and returns its handle.
func (s *Server) createRule(w http.ResponseWriter, r *http.Request) {
	req := r.Context().Value(ctxKeyRule).(validatedRule)
	rule, err := s.svc.CreateRule(r.Context(), chi.URLParam(r, "ledger"), req.schedule, req.amount, req.description)
	if err != nil {
		serviceErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toRuleResponse(rule))
}

// listRules returns a ledger's recurrence rules in creation order.
func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.svc.Rules(r.Context(), chi.URLParam(r, "ledger"))
	if err != nil {
		serviceErr(w, err)
		return
	}
	out := ruleListResponse{Rules: make([]ruleResponse, 0, len(rules))}
	for _, rule := range rules {
		out.Rules = append(out.Rules, toRuleResponse(rule))
	}
	toJSON(w, http.StatusOK, out)
}

// deleteRule removes a rule by its opaque ID.
func (s *Server) deleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid rule id")
		return
	}
	if err := s.svc.DeleteRule(r.Context(), chi.URLParam(r, "ledger"), id); err != nil {
		serviceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
