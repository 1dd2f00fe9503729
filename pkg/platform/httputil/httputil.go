// Package httputil maps domain errors onto HTTP responses.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "registrar/pkg/domain-errors"
)

// errorResponse is the wire shape for every failure: {"error": "<message>"}.
type errorResponse struct {
	Error string `json:"error"`
}

// StatusFor returns the HTTP status for a domain error code.
// Validation and configuration defects are both caller-visible 400s;
// conflicts are 409; everything else is a 500.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeConfiguration:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as JSON. Internal and upstream errors get a generic
// message so collaborator details never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := dErrors.MessageOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeUpstream {
		message = "Something went wrong while creating the student."
	}
	WriteJSON(w, StatusFor(code), errorResponse{Error: message})
}

// WriteJSON renders v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
