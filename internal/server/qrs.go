package server

import (
	"net/http"

	"github.com/aaoeclipse/serverless-qr-manager/internal/service"
)

func (s *Service) handleListQRs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	qrs, err := s.qrs.List(ctx, userID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if len(qrs) == 0 {
		s.respondError(w, http.StatusNotFound, "No QRs found for user")
		return
	}

	s.respondJSON(w, http.StatusOK, qrs)
}

func (s *Service) handleCreateQR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var input service.CreateQRInput
	if !s.decodeJSON(w, r, &input) {
		return
	}

	qr, err := s.qrs.Create(ctx, userID, input)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message":   "QR code created",
		"qrId":      qr.ID,
		"qrDataUrl": qr.DataURL,
	})
}

func (s *Service) handleGetQR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	qr, err := s.qrs.Get(ctx, userID, r.PathValue("qrId"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, qr)
}

func (s *Service) handleDeleteQR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := s.qrs.Delete(ctx, userID, r.PathValue("qrId")); err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "QR removed"})
}
