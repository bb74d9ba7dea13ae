// Package httpserver exposes the core's operations as a thin JSON API.
//
// It keeps HTTP concerns out of the usecases: request decoding,
// validation, and the mapping from the domain error taxonomy to status
// codes all live here.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/internship-tracker/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, _ *http.Request, err error, details any) {
	code := http.StatusInternalServerError
	codeStr := "INTERNAL"

	var transition *domain.InvalidStateTransitionError
	if errors.As(err, &transition) {
		writeJSON(w, http.StatusConflict, errorEnvelope{Error: apiError{
			Code:    "INVALID_STATE_TRANSITION",
			Message: transition.Error(),
			Details: map[string]any{
				"from":    transition.From,
				"to":      transition.To,
				"allowed": transition.Allowed,
			},
		}})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
		codeStr = "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
		codeStr = "NOT_FOUND"
	case errors.Is(err, domain.ErrBusinessRule):
		code = http.StatusUnprocessableEntity
		codeStr = "BUSINESS_RULE_VIOLATION"
	case errors.Is(err, domain.ErrUnauthorized):
		code = http.StatusForbidden
		codeStr = "UNAUTHORIZED_ACTION"
	case errors.Is(err, domain.ErrConflict):
		code = http.StatusConflict
		codeStr = "CONFLICT"
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: err.Error(), Details: details}})
}
