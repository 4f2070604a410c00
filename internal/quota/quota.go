// Package quota decides whether a tenant may create one more resource of a
// kind. Creates go through Reserve, a conditional counter increment that
// stays correct under concurrent requests; Allowed is the cheap read-only
// pre-check used to tell a plain ceiling hit apart from a lost race.
package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/aaoeclipse/serverless-qr-manager/internal/store"
	"github.com/aaoeclipse/serverless-qr-manager/pkg/types"
)

// Limits holds the free-tier ceiling per resource kind. Pro-tier tenants
// are exempt from all of them.
type Limits struct {
	QR       int64
	Document int64
}

type Enforcer struct {
	logger   *logrus.Logger
	profiles store.ProfileStore
	quotas   store.QuotaStore
	limits   Limits
}

func NewEnforcer(logger *logrus.Logger, profiles store.ProfileStore, quotas store.QuotaStore, limits Limits) *Enforcer {
	return &Enforcer{
		logger:   logger,
		profiles: profiles,
		quotas:   quotas,
		limits:   limits,
	}
}

func (e *Enforcer) ceiling(kind store.Kind) (int64, error) {
	switch kind {
	case store.KindQR:
		return e.limits.QR, nil
	case store.KindDocument:
		return e.limits.Document, nil
	}
	return 0, fmt.Errorf("no quota ceiling for kind %q", kind)
}

// Allowed answers whether the tenant could create one more resource of kind
// right now. A count-then-create sequence built on this alone is racy; it
// exists for cheap rejection and for classifying Reserve failures.
func (e *Enforcer) Allowed(ctx context.Context, tenantID string, kind store.Kind) (bool, error) {
	tier, err := e.profiles.Tier(ctx, tenantID)
	if err != nil {
		return false, err
	}
	if tier == types.TierPro {
		return true, nil
	}

	ceiling, err := e.ceiling(kind)
	if err != nil {
		return false, err
	}

	count, err := e.quotas.CountByPrefix(ctx, tenantID, kind)
	if err != nil {
		return false, err
	}

	e.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"kind":      kind,
		"count":     count,
		"ceiling":   ceiling,
	}).Debug("quota check")

	return count < ceiling, nil
}

// Reserve claims a creation slot for the tenant. The counter increment is
// conditional on staying at or under the ceiling, so two concurrent creates
// can never both claim the last slot. Returns ErrQuotaExceeded when the
// ceiling is already reached, ErrConflict when the slot was lost to a
// concurrent request after the pre-check passed.
func (e *Enforcer) Reserve(ctx context.Context, tenantID string, kind store.Kind) error {
	tier, err := e.profiles.Tier(ctx, tenantID)
	if err != nil {
		return err
	}

	ceiling, err := e.ceiling(kind)
	if err != nil {
		return err
	}
	if tier == types.TierPro {
		// Still counted, never gated. Keeps the counter equal to the
		// create/delete balance across tier changes.
		ceiling = 0
	}

	allowed := true
	if ceiling > 0 {
		allowed, err = e.Allowed(ctx, tenantID, kind)
		if err != nil {
			return err
		}
		if !allowed {
			return types.ErrQuotaExceeded
		}
	}

	if err := e.quotas.Reserve(ctx, tenantID, kind, ceiling); err != nil {
		if errors.Is(err, types.ErrQuotaExceeded) && allowed {
			// Pre-check said yes, conditional write said no: a
			// concurrent create took the slot first.
			return types.ErrConflict
		}
		return err
	}
	return nil
}

// Release returns a slot after a delete or a failed create.
func (e *Enforcer) Release(ctx context.Context, tenantID string, kind store.Kind) error {
	if _, err := e.ceiling(kind); err != nil {
		return err
	}
	return e.quotas.Release(ctx, tenantID, kind)
}
