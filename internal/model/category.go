package model

import (
	"time"

	"gorm.io/gorm"
)

// Category represents a product category. Categories form a tree through the
// nullable ParentID reference and are scoped to a tenant.
type Category struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	ShortName   string         `json:"short_name,omitempty" gorm:"type:varchar(50)"`
	Slug        string         `json:"slug" gorm:"type:varchar(100);uniqueIndex:idx_categories_tenant_slug;not null"`
	ParentID    *uint          `json:"parent_id,omitempty" gorm:"index"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	TenantID    *uint          `json:"tenant_id,omitempty" gorm:"uniqueIndex:idx_categories_tenant_slug;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Parent   *Category  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

// Tag represents a free-form product tag, scoped to a tenant.
type Tag struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug        string         `json:"slug" gorm:"type:varchar(100);uniqueIndex:idx_tags_tenant_slug;not null"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	TenantID    *uint          `json:"tenant_id,omitempty" gorm:"uniqueIndex:idx_tags_tenant_slug;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
