package model

import (
	"time"

	"gorm.io/gorm"
)

// Product type values, matching the WooCommerce import format.
const (
	ProductTypeSimple   = "simple"
	ProductTypeVariable = "variable"
	ProductTypeGrouped  = "grouped"
	ProductTypeExternal = "external"
)

// Product status values.
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
	ProductStatusTrash     = "trash"
)

// Product represents the product master data. Every product belongs to a
// tenant; the SKU is unique within that tenant.
type Product struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Name              string         `json:"name" gorm:"type:varchar(255);not null"`
	Slug              string         `json:"slug" gorm:"type:varchar(255);index;not null"`
	SKU               string         `json:"sku" gorm:"type:varchar(100);uniqueIndex:idx_products_tenant_sku;not null"`
	Type              string         `json:"type" gorm:"type:varchar(20);not null;default:'simple'"`
	Status            string         `json:"status" gorm:"type:varchar(20);not null;default:'draft'"`
	Featured          bool           `json:"featured" gorm:"default:false"`
	CatalogVisibility string         `json:"catalog_visibility" gorm:"type:varchar(20);default:'visible'"`
	Description       string         `json:"description,omitempty" gorm:"type:text"`
	ShortDescription  string         `json:"short_description,omitempty" gorm:"type:text"`
	Price             *float64       `json:"price,omitempty"`
	RegularPrice      *float64       `json:"regular_price,omitempty"`
	SalePrice         *float64       `json:"sale_price,omitempty"`
	SalePriceStart    *time.Time     `json:"sale_price_start_date,omitempty"`
	SalePriceEnd      *time.Time     `json:"sale_price_end_date,omitempty"`
	MenuOrder         int            `json:"menu_order" gorm:"default:0"`
	StockQuantity     int            `json:"stock_quantity" gorm:"default:0"`
	StockStatus       string         `json:"stock_status" gorm:"type:varchar(20);default:'instock'"`
	Weight            *float64       `json:"weight,omitempty"`
	Length            *float64       `json:"length,omitempty"`
	Width             *float64       `json:"width,omitempty"`
	Height            *float64       `json:"height,omitempty"`
	Brand             string         `json:"brand,omitempty" gorm:"type:varchar(100)"`
	GTIN              string         `json:"gtin,omitempty" gorm:"type:varchar(100)"`
	CategoryID        *uint          `json:"category_id,omitempty" gorm:"index"`
	TenantID          *uint          `json:"tenant_id,omitempty" gorm:"uniqueIndex:idx_products_tenant_sku;index"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Category   *Category          `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Images     []ProductImage     `json:"images,omitempty" gorm:"foreignKey:ProductID"`
	Variations []ProductVariation `json:"variations,omitempty" gorm:"foreignKey:ProductID"`
}

// ProductImage represents a stored media item belonging to a product.
// SizeBytes feeds the tenant storage quota.
type ProductImage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProductID  uint      `json:"product_id" gorm:"index;not null"`
	FilePath   string    `json:"file_path,omitempty" gorm:"type:varchar(255)"`
	ImageURL   string    `json:"image_url,omitempty" gorm:"type:varchar(500)"`
	AltText    string    `json:"alt_text,omitempty" gorm:"type:varchar(255)"`
	SizeBytes  int64     `json:"size_bytes" gorm:"not null;default:0"`
	IsFeatured bool      `json:"is_featured" gorm:"default:false"`
	SortOrder  int       `json:"sort_order" gorm:"default:0"`
	TenantID   *uint     `json:"tenant_id,omitempty" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
}
