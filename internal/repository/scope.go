// Package repository provides data access for tenant-scoped entities. Every
// read goes through Scoped, which restricts the query to the tenant bound in
// the request context; a context with no tenant (the super-admin case) sees
// all rows. Unrestricted is the explicit opt-in for administrative reads that
// must cross tenants.
package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fx0883/productsShow/internal/apperrors"
	"github.com/fx0883/productsShow/internal/tenantctx"
	"github.com/fx0883/productsShow/prometheus"
)

// Scoped returns db restricted to the tenant in ctx. When ctx carries no
// tenant, the query is left unrestricted.
func Scoped(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tenantID, ok := tenantctx.TenantID(ctx); ok {
		return db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	}
	return db.WithContext(ctx)
}

// Unrestricted returns db with no tenant filter regardless of ctx. Callers
// opt in by name; the access is logged so cross-tenant reads stay auditable.
func Unrestricted(ctx context.Context, db *gorm.DB, log *zap.Logger, reason string) *gorm.DB {
	prometheus.RecordUnrestrictedAccess(reason)
	if tenantID, ok := tenantctx.TenantID(ctx); ok {
		log.Info("Unrestricted data access from tenant-bound context",
			zap.Uint("tenant_id", tenantID),
			zap.String("reason", reason))
	}
	return db.WithContext(ctx)
}

// ResolveTenantID determines the tenant for a new entity: an explicitly
// supplied tenant wins, otherwise the tenant bound in ctx. A write with
// neither fails rather than persisting a tenant-less row.
func ResolveTenantID(ctx context.Context, explicit *uint) (*uint, error) {
	if explicit != nil {
		return explicit, nil
	}
	if tenantID, ok := tenantctx.TenantID(ctx); ok {
		return &tenantID, nil
	}
	return nil, apperrors.ErrMissingTenantContext
}
