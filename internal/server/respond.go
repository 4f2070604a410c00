package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response body")
	}
}

func (s *Service) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is treated as an upstream failure.
func (s *Service) respondServiceError(w http.ResponseWriter, err error) {
	var ve *types.ValidationError
	switch {
	case errors.As(err, &ve):
		s.respondError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, types.ErrInvalidCredentials):
		s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, types.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, types.ErrQuotaExceeded):
		s.respondError(w, http.StatusForbidden, "Tier limit reached")
	case errors.Is(err, types.ErrConflict):
		s.respondError(w, http.StatusConflict, "Lost a concurrent create, retry the request")
	default:
		s.logger.WithError(err).Error("request failed")
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Service) decodeJSON(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		s.respondError(w, http.StatusBadRequest, "Malformed request body")
		return false
	}
	return true
}
