package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aaoeclipse/serverless-qr-manager/internal/quota"
	"github.com/aaoeclipse/serverless-qr-manager/internal/storage"
	"github.com/aaoeclipse/serverless-qr-manager/internal/store"
	"github.com/aaoeclipse/serverless-qr-manager/internal/utils"
	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

// UploadIssuer is the object-store collaborator: it mints time-boxed
// write-capable handles and builds public object URLs.
type UploadIssuer interface {
	IssueUploadHandle(ctx context.Context, key string) (string, error)
	ObjectURL(key string) string
}

// DocumentService drives documents through the two-phase upload lifecycle:
// CreateUpload issues a pending handle, Confirm marks the bytes as landed.
type DocumentService struct {
	logger *logrus.Logger
	docs   store.DocumentStore
	quota  *quota.Enforcer
	bucket UploadIssuer

	newID func() string
	now   func() time.Time
}

func NewDocumentService(logger *logrus.Logger, docs store.DocumentStore, enforcer *quota.Enforcer, bucket UploadIssuer) *DocumentService {
	return &DocumentService{
		logger: logger,
		docs:   docs,
		quota:  enforcer,
		bucket: bucket,
		newID:  utils.NanoID,
		now:    time.Now,
	}
}

// UploadGrant is what a tenant needs to upload document bytes directly to
// object storage.
type UploadGrant struct {
	DocID      string `json:"docId"`
	UploadURL  string `json:"presignedUrl"`
	StorageKey string `json:"s3Key"`
}

// CreateUpload records the document with uploading=true and mints the
// upload handle. Both must succeed before the grant is returned: a handle
// without a recorded item would be an orphan the tenant can never confirm
// or delete. Retrying after a failure is always safe since every attempt
// generates a fresh id.
func (s *DocumentService) CreateUpload(ctx context.Context, tenantID, name string) (*UploadGrant, error) {
	if name == "" {
		return nil, types.NewValidationError("name", "must not be empty")
	}

	if err := s.quota.Reserve(ctx, tenantID, store.KindDocument); err != nil {
		return nil, err
	}

	docID := s.newID()
	key := storage.ObjectKey(tenantID, docID)

	doc := &types.Document{
		ID:        docID,
		Name:      name,
		URL:       s.bucket.ObjectURL(key),
		CreatedAt: s.now(),
		OwnerID:   tenantID,
		Uploading: true,
	}

	if err := s.docs.Create(ctx, tenantID, doc); err != nil {
		s.releaseSlot(ctx, tenantID)
		return nil, err
	}

	uploadURL, err := s.bucket.IssueUploadHandle(ctx, key)
	if err != nil {
		// Roll the metadata back so the table holds no document the
		// tenant was never handed an upload handle for.
		if _, delErr := s.docs.Delete(ctx, tenantID, docID); delErr != nil {
			s.logger.WithError(delErr).WithFields(logrus.Fields{
				"tenant_id": tenantID,
				"doc_id":    docID,
			}).Warn("failed to roll back document after presign failure")
		}
		s.releaseSlot(ctx, tenantID)
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"doc_id":    docID,
	}).Info("upload handle issued")

	return &UploadGrant{DocID: docID, UploadURL: uploadURL, StorageKey: key}, nil
}

// Confirm flips uploading to false for good. The bytes are not probed in
// object storage; a tenant confirming before the PUT completes records a
// document whose URL may briefly 404.
func (s *DocumentService) Confirm(ctx context.Context, tenantID, docID string) error {
	if !store.ValidIdentifier(docID) {
		return types.NewValidationError("docId", "malformed identifier")
	}
	return s.docs.SetUploading(ctx, tenantID, docID, false)
}

func (s *DocumentService) List(ctx context.Context, tenantID string) ([]types.Document, error) {
	return s.docs.List(ctx, tenantID)
}

func (s *DocumentService) Get(ctx context.Context, tenantID, docID string) (*types.Document, error) {
	if !store.ValidIdentifier(docID) {
		return nil, types.NewValidationError("docId", "malformed identifier")
	}
	return s.docs.Get(ctx, tenantID, docID)
}

// Delete removes the metadata regardless of uploading state. The
// underlying bytes are not touched; cleanup of abandoned objects belongs
// to storage lifecycle policy.
func (s *DocumentService) Delete(ctx context.Context, tenantID, docID string) error {
	if !store.ValidIdentifier(docID) {
		return types.NewValidationError("docId", "malformed identifier")
	}

	existed, err := s.docs.Delete(ctx, tenantID, docID)
	if err != nil {
		return err
	}
	if !existed {
		return types.ErrNotFound
	}

	s.releaseSlot(ctx, tenantID)
	return nil
}

func (s *DocumentService) releaseSlot(ctx context.Context, tenantID string) {
	if err := s.quota.Release(ctx, tenantID, store.KindDocument); err != nil {
		s.logger.WithError(err).WithField("tenant_id", tenantID).Warn("failed to release quota slot")
	}
}
