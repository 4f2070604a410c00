// Package store owns the single-table key layout and all read/write access
// to it. Raw DynamoDB items never cross the package boundary; every
// operation speaks typed records from pkg/types.
package store

import (
	"context"

	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

type ProfileStore interface {
	Put(ctx context.Context, profile *types.Profile) error
	Get(ctx context.Context, tenantID string) (*types.Profile, error)
	// Tier reads just the tier attribute of the tenant's profile. A missing
	// profile is reported as TierFree, not as an error.
	Tier(ctx context.Context, tenantID string) (types.Tier, error)
}

type QRStore interface {
	Create(ctx context.Context, tenantID string, qr *types.QR) error
	Get(ctx context.Context, tenantID, qrID string) (*types.QR, error)
	List(ctx context.Context, tenantID string) ([]types.QR, error)
	// Delete reports whether an item actually existed, so callers can
	// distinguish removal from deleting something already gone.
	Delete(ctx context.Context, tenantID, qrID string) (bool, error)
}

type DocumentStore interface {
	Create(ctx context.Context, tenantID string, doc *types.Document) error
	Get(ctx context.Context, tenantID, docID string) (*types.Document, error)
	List(ctx context.Context, tenantID string) ([]types.Document, error)
	Delete(ctx context.Context, tenantID, docID string) (bool, error)
	// SetUploading flips the upload flag on an existing document. Returns
	// ErrNotFound when the document does not exist; it never upserts.
	SetUploading(ctx context.Context, tenantID, docID string, uploading bool) error
}

// QuotaStore backs the quota enforcer. CountByPrefix is the count-only scan
// over a tenant's kind range; Reserve/Release maintain the per-tenant
// per-kind counter item used for race-safe creates.
type QuotaStore interface {
	CountByPrefix(ctx context.Context, tenantID string, kind Kind) (int64, error)
	// Reserve atomically increments the tenant's counter for kind and
	// fails with ErrQuotaExceeded once the increment would push it past
	// ceiling. A ceiling <= 0 means unbounded.
	Reserve(ctx context.Context, tenantID string, kind Kind, ceiling int64) error
	// Release decrements the counter, flooring at zero.
	Release(ctx context.Context, tenantID string, kind Kind) error
}
