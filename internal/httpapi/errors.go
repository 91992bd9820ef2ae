package httpapi

import (
	"errors"
	"net/http"

	"github.com/tinwood/ledgerd/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func notFound(w http.ResponseWriter)               { writeErr(w, http.StatusNotFound, "not_found", "not_found") }

// serviceErr maps core errors onto HTTP statuses: unknown names/sequence
// ids/rule ids are 404s, malformed input is a 400, anything else (storage
// included) is a 500. The core itself has no notion of status codes.
func serviceErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.Is(err, errs.ErrInvalidSchedule):
		writeErr(w, http.StatusBadRequest, err.Error(), "invalid_schedule")
	case errors.Is(err, errs.ErrInvalid):
		badRequest(w, err.Error())
	case errors.Is(err, errs.ErrExists):
		writeErr(w, http.StatusConflict, err.Error(), "already_exists")
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", "storage_error")
	}
}
