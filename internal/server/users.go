package server

import (
	"net/http"
)

func (s *Service) handleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	profile, err := s.users.Profile(ctx, userID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"userId":    profile.ID,
		"name":      profile.Name,
		"email":     profile.Email,
		"tier":      profile.Tier,
		"directory": profile.Directory,
	})
}
