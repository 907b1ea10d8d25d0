package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/classon/classon/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON encodes body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func WriteError(w http.ResponseWriter, status int, message string, details string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// WriteServiceError maps validation failures to 400, errors matching one of notFound to 404 and
// anything else to 500.
func WriteServiceError(w http.ResponseWriter, err error, notFound ...error) {
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "Validation failed", validationErr.Error())
		return
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			WriteError(w, http.StatusNotFound, target.Error(), err.Error())
			return
		}
	}
	log.Errorf("request failed: %v", err)
	WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
}

// PathId parses the named mux route variable as a uuid.
func PathId(r *http.Request, name string) (uuid.UUID, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return uuid.Nil, fmt.Errorf("missing path parameter %s", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

// DecodeJSON decodes the request body into v and writes a 400 response on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	return true
}
