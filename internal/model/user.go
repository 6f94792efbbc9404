package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a principal. A user belongs to exactly one tenant, or to
// none: a nil TenantID marks a super admin who sees across all tenants.
// Roles are independent flags rather than an exclusive enum.
type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email        string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password     string         `json:"-" gorm:"type:varchar(255);not null"`
	Phone        string         `json:"phone,omitempty" gorm:"type:varchar(20)"`
	TenantID     *uint          `json:"tenant_id,omitempty" gorm:"index"`
	IsAdmin      bool           `json:"is_admin" gorm:"default:false"`
	IsMember     bool           `json:"is_member" gorm:"default:true"`
	IsSuperAdmin bool           `json:"is_super_admin" gorm:"default:false"`
	PreferredLanguage string    `json:"preferred_language" gorm:"type:varchar(10);default:'en'"`
	DateFormat   string         `json:"date_format" gorm:"type:varchar(20);default:'YYYY-MM-DD'"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// Token types recorded per issued JWT.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// UserToken records an issued JWT so tokens can be revoked on logout and
// checked on refresh.
type UserToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index:idx_user_tokens_user_type;not null"`
	Token     string    `json:"token" gorm:"type:varchar(512);index;not null"`
	TokenType string    `json:"token_type" gorm:"type:varchar(20);index:idx_user_tokens_user_type;not null;default:'access'"`
	IsValid   bool      `json:"is_valid" gorm:"default:true"`
	ExpiredAt time.Time `json:"expired_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// IsExpired reports whether the token can no longer be used.
func (t *UserToken) IsExpired(now time.Time) bool {
	return !t.IsValid || t.ExpiredAt.Before(now)
}
