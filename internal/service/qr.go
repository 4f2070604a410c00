// Package service implements the resource services orchestrating the store,
// the quota enforcer and the external collaborators.
package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aaoeclipse/serverless-qr-manager/internal/qrgen"
	"github.com/aaoeclipse/serverless-qr-manager/internal/quota"
	"github.com/aaoeclipse/serverless-qr-manager/internal/store"
	"github.com/aaoeclipse/serverless-qr-manager/internal/utils"
	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

type QRService struct {
	logger  *logrus.Logger
	qrs     store.QRStore
	quota   *quota.Enforcer
	encoder qrgen.Encoder

	newID func() string
	now   func() time.Time
}

func NewQRService(logger *logrus.Logger, qrs store.QRStore, enforcer *quota.Enforcer, encoder qrgen.Encoder) *QRService {
	return &QRService{
		logger:  logger,
		qrs:     qrs,
		quota:   enforcer,
		encoder: encoder,
		newID:   utils.NanoID,
		now:     time.Now,
	}
}

type CreateQRInput struct {
	Name string       `json:"name"`
	Path string       `json:"path"`
	Type types.QRType `json:"type"`
}

func (in CreateQRInput) validate() error {
	fields := make(map[string]string)
	if in.Name == "" {
		fields["name"] = "must not be empty"
	}
	if in.Path == "" {
		fields["path"] = "must not be empty"
	}
	if !types.ValidQRType(in.Type) {
		fields["type"] = "must be one of table, menu, portafolio, other"
	}
	if len(fields) > 0 {
		return &types.ValidationError{Fields: fields}
	}
	return nil
}

// Create reserves a quota slot, renders the QR image and writes the item.
// The slot is returned on any failure past the reservation, so a failed
// create never burns quota.
func (s *QRService) Create(ctx context.Context, tenantID string, in CreateQRInput) (*types.QR, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if err := s.quota.Reserve(ctx, tenantID, store.KindQR); err != nil {
		return nil, err
	}

	dataURL, err := s.encoder.Encode(in.Path)
	if err != nil {
		s.releaseSlot(ctx, tenantID, store.KindQR)
		return nil, types.NewValidationError("path", "cannot be encoded as a QR code")
	}

	qr := &types.QR{
		ID:        s.newID(),
		Type:      in.Type,
		Path:      in.Path,
		Name:      in.Name,
		DataURL:   dataURL,
		CreatedAt: s.now(),
	}

	if err := s.qrs.Create(ctx, tenantID, qr); err != nil {
		s.releaseSlot(ctx, tenantID, store.KindQR)
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"qr_id":     qr.ID,
		"type":      qr.Type,
	}).Info("qr created")

	return qr, nil
}

func (s *QRService) List(ctx context.Context, tenantID string) ([]types.QR, error) {
	return s.qrs.List(ctx, tenantID)
}

func (s *QRService) Get(ctx context.Context, tenantID, qrID string) (*types.QR, error) {
	if !store.ValidIdentifier(qrID) {
		return nil, types.NewValidationError("qrId", "malformed identifier")
	}
	return s.qrs.Get(ctx, tenantID, qrID)
}

// Delete removes the QR and returns its quota slot. Deleting an id that
// does not exist reports ErrNotFound, never silent success.
func (s *QRService) Delete(ctx context.Context, tenantID, qrID string) error {
	if !store.ValidIdentifier(qrID) {
		return types.NewValidationError("qrId", "malformed identifier")
	}

	existed, err := s.qrs.Delete(ctx, tenantID, qrID)
	if err != nil {
		return err
	}
	if !existed {
		return types.ErrNotFound
	}

	s.releaseSlot(ctx, tenantID, store.KindQR)
	return nil
}

// releaseSlot is best effort: the primary operation already settled, so a
// failed decrement is logged rather than surfaced.
func (s *QRService) releaseSlot(ctx context.Context, tenantID string, kind store.Kind) {
	if err := s.quota.Release(ctx, tenantID, kind); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"kind":      kind,
		}).Warn("failed to release quota slot")
	}
}
