package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaoeclipse/serverless-qr-manager/internal/quota"
	"github.com/aaoeclipse/serverless-qr-manager/internal/store"
	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

type stubBucket struct {
	presignErr error
	issued     []string
}

func (b *stubBucket) IssueUploadHandle(ctx context.Context, key string) (string, error) {
	if b.presignErr != nil {
		return "", b.presignErr
	}
	b.issued = append(b.issued, key)
	return "https://bucket.s3.amazonaws.com/" + key + "?presigned", nil
}

func (b *stubBucket) ObjectURL(key string) string {
	return "https://bucket.s3.amazonaws.com/" + key
}

func newDocumentFixture(t *testing.T) (*DocumentService, *store.Memory, *stubBucket) {
	t.Helper()
	mem := store.NewMemory()
	enforcer := quota.NewEnforcer(testLogger(), mem, mem, quota.Limits{QR: 1, Document: 1})
	bucket := &stubBucket{}
	return NewDocumentService(testLogger(), mem.Documents(), enforcer, bucket), mem, bucket
}

func TestDocumentUploadLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, mem, bucket := newDocumentFixture(t)

	grant, err := svc.CreateUpload(ctx, "u1", "menu.pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, grant.DocID)
	assert.Equal(t, "u1/"+grant.DocID, grant.StorageKey)
	assert.Contains(t, grant.UploadURL, "presigned")
	require.Len(t, bucket.issued, 1)

	doc, err := mem.Documents().Get(ctx, "u1", grant.DocID)
	require.NoError(t, err)
	assert.True(t, doc.Uploading)
	assert.Equal(t, "u1", doc.OwnerID)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/u1/"+grant.DocID, doc.URL)

	require.NoError(t, svc.Confirm(ctx, "u1", grant.DocID))
	doc, err = mem.Documents().Get(ctx, "u1", grant.DocID)
	require.NoError(t, err)
	assert.False(t, doc.Uploading)
}

func TestDocumentConfirmUnknownID(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newDocumentFixture(t)

	err := svc.Confirm(ctx, "u1", "never-issued")
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestDocumentDeleteBeforeConfirm(t *testing.T) {
	ctx := context.Background()
	svc, mem, _ := newDocumentFixture(t)

	grant, err := svc.CreateUpload(ctx, "u1", "menu.pdf")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", grant.DocID))

	_, err = mem.Documents().Get(ctx, "u1", grant.DocID)
	require.ErrorIs(t, err, types.ErrNotFound)

	// The slot is freed, so the tenant can start over.
	_, err = svc.CreateUpload(ctx, "u1", "menu-v2.pdf")
	require.NoError(t, err)
}

func TestDocumentDeleteUnknownReportsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newDocumentFixture(t)

	err := svc.Delete(ctx, "u1", "never-existed")
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestDocumentQuotaCeiling(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newDocumentFixture(t)

	_, err := svc.CreateUpload(ctx, "u1", "first.pdf")
	require.NoError(t, err)

	_, err = svc.CreateUpload(ctx, "u1", "second.pdf")
	require.ErrorIs(t, err, types.ErrQuotaExceeded)
}

func TestDocumentCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newDocumentFixture(t)

	_, err := svc.CreateUpload(ctx, "u1", "")
	assert.True(t, types.IsValidation(err))

	err = svc.Confirm(ctx, "u1", "bad#id")
	assert.True(t, types.IsValidation(err))
}

func TestDocumentPresignFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	enforcer := quota.NewEnforcer(testLogger(), mem, mem, quota.Limits{QR: 1, Document: 1})
	bucket := &stubBucket{presignErr: errors.New("s3 unavailable")}
	svc := NewDocumentService(testLogger(), mem.Documents(), enforcer, bucket)

	_, err := svc.CreateUpload(ctx, "u1", "menu.pdf")
	require.Error(t, err)

	// No orphaned metadata and no burned slot.
	docs, err := mem.Documents().List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, docs)

	bucket.presignErr = nil
	_, err = svc.CreateUpload(ctx, "u1", "menu.pdf")
	require.NoError(t, err)
}
