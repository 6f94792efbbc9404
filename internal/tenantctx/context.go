// Package tenantctx carries the active tenant for a unit of work through
// context.Context. Each request derives its own context, so concurrent
// requests never observe each other's tenant. An absent value is the default
// and doubles as the super-admin signal: reads without a tenant are
// unrestricted.
package tenantctx

import (
	"context"
)

// ctxKeyType represents the type for all context keys
type ctxKeyType string

const (
	ctxTenantIDKey ctxKeyType = "TenantID"
	ctxUserIDKey   ctxKeyType = "UserID"
)

// WithTenant returns a context bound to the given tenant. It replaces any
// tenant already present.
func WithTenant(ctx context.Context, tenantID uint) context.Context {
	return context.WithValue(ctx, ctxTenantIDKey, tenantID)
}

// TenantID retrieves the active tenant from the context. The second return
// is false when no tenant is bound (unbound or super-admin context).
func TenantID(ctx context.Context) (uint, bool) {
	if tenantID, ok := ctx.Value(ctxTenantIDKey).(uint); ok {
		return tenantID, true
	}
	return 0, false
}

// Detach returns a context with no tenant bound, keeping everything else.
// It is the explicit escape hatch for administrative reads that need
// cross-tenant visibility.
func Detach(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxTenantIDKey, nil)
}

// WithUser returns a context carrying the authenticated user's ID.
func WithUser(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

// UserID retrieves the authenticated user's ID from the context.
func UserID(ctx context.Context) (uint, bool) {
	if userID, ok := ctx.Value(ctxUserIDKey).(uint); ok {
		return userID, true
	}
	return 0, false
}
