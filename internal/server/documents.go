package server

import (
	"net/http"
)

func (s *Service) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	docs, err := s.documents.List(ctx, userID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, docs)
}

func (s *Service) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	grant, err := s.documents.CreateUpload(ctx, userID, req.Name)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, grant)
}

func (s *Service) handleConfirmUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var req struct {
		DocID string `json:"docId"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if err := s.documents.Confirm(ctx, userID, req.DocID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Service) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	doc, err := s.documents.Get(ctx, userID, r.PathValue("docId"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Service) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := s.documents.Delete(ctx, userID, r.PathValue("docId")); err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
