package model

import (
	"time"
)

// Tenant status values. A tenant is soft deleted: the row is kept and
// flagged, never physically removed while referenced.
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
	TenantStatusDeleted   = "deleted"
)

// Tenant represents an isolated customer boundary within the shared database.
// This is the core of the multi-tenant architecture.
type Tenant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Status    string    `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	IsDeleted bool      `json:"is_deleted" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quota *TenantQuota `json:"quota,omitempty" gorm:"foreignKey:TenantID"`
}

// Default quota caps applied when a quota row is created lazily.
const (
	DefaultMaxUsers     = 10
	DefaultMaxAdmins    = 2
	DefaultMaxStorageMB = 1024
	DefaultMaxProducts  = 100
)

// TenantQuota holds per-tenant resource caps and the cached storage usage.
// Exactly one row exists per tenant, guaranteed by the unique index on
// TenantID together with an atomic get-or-insert in the repository.
type TenantQuota struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	TenantID             uint      `json:"tenant_id" gorm:"uniqueIndex;not null"`
	MaxUsers             int       `json:"max_users" gorm:"not null;default:10"`
	MaxAdmins            int       `json:"max_admins" gorm:"not null;default:2"`
	MaxStorageMB         int       `json:"max_storage_mb" gorm:"not null;default:1024"`
	MaxProducts          int       `json:"max_products" gorm:"not null;default:100"`
	CurrentStorageUsedMB float64   `json:"current_storage_used_mb" gorm:"not null;default:0"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (TenantQuota) TableName() string {
	return "tenant_quotas"
}
