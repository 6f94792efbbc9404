// Package apperrors defines the business error kinds raised by the tenant
// isolation and quota layer. All of them are recoverable per-request
// failures that the HTTP layer maps to client-facing responses.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTenantContext is returned when a write is attempted with no
	// resolvable tenant and no explicit override.
	ErrMissingTenantContext = errors.New("no tenant in context and none supplied")

	// ErrTenantNotFound is returned when a tenant lookup by identity fails.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantInactive is returned when the tenant exists but is suspended
	// or soft deleted.
	ErrTenantInactive = errors.New("tenant is not active")

	// ErrNotFound is returned when a tenant-scoped entity lookup fails,
	// including the case where the row exists but belongs to another tenant.
	ErrNotFound = errors.New("record not found")
)

// Quota kinds reported in QuotaExceededError.
const (
	QuotaKindUsers    = "users"
	QuotaKindAdmins   = "admins"
	QuotaKindProducts = "products"
	QuotaKindStorage  = "storage"
)

// QuotaExceededError reports a write that would breach a tenant cap.
type QuotaExceededError struct {
	Kind    string
	Limit   int
	Current float64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s quota exceeded: limit %d, current %v", e.Kind, e.Limit, e.Current)
}

// IsQuotaExceeded reports whether err is a QuotaExceededError and returns it.
func IsQuotaExceeded(err error) (*QuotaExceededError, bool) {
	var qe *QuotaExceededError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
