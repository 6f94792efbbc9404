package model

import (
	"time"

	"gorm.io/gorm"
)

// Attribute defines a product attribute such as "color" or "size".
type Attribute struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	Name                string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug                string         `json:"slug" gorm:"type:varchar(100);uniqueIndex:idx_attributes_tenant_slug;not null"`
	Description         string         `json:"description,omitempty" gorm:"type:text"`
	HasPredefinedValues bool           `json:"has_predefined_values" gorm:"default:true"`
	TenantID            *uint          `json:"tenant_id,omitempty" gorm:"uniqueIndex:idx_attributes_tenant_slug;index"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Values []AttributeValue `json:"values,omitempty" gorm:"foreignKey:AttributeID"`
}

// AttributeValue is one selectable value of an attribute, such as "red".
type AttributeValue struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	AttributeID uint   `json:"attribute_id" gorm:"uniqueIndex:idx_attribute_values_attr_slug;not null"`
	Name        string `json:"name" gorm:"type:varchar(100);not null"`
	Slug        string `json:"slug" gorm:"type:varchar(100);uniqueIndex:idx_attribute_values_attr_slug;not null"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	SortOrder   int    `json:"sort_order" gorm:"default:0"`
	TenantID    *uint  `json:"tenant_id,omitempty" gorm:"index"`
}

// ProductAttribute links a product to an attribute and marks whether the
// attribute participates in variations.
type ProductAttribute struct {
	ID                uint  `json:"id" gorm:"primaryKey"`
	ProductID         uint  `json:"product_id" gorm:"uniqueIndex:idx_product_attributes_prod_attr;not null"`
	AttributeID       uint  `json:"attribute_id" gorm:"uniqueIndex:idx_product_attributes_prod_attr;not null"`
	UsedForVariations bool  `json:"used_for_variations" gorm:"default:true"`
	TenantID          *uint `json:"tenant_id,omitempty" gorm:"index"`
}

// ProductVariation is a concrete sellable variant of a variable product.
// The SKU is unique within the tenant, like the parent product's.
type ProductVariation struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	ProductID      uint           `json:"product_id" gorm:"index;not null"`
	SKU            string         `json:"sku" gorm:"type:varchar(100);uniqueIndex:idx_variations_tenant_sku;not null"`
	Name           string         `json:"name,omitempty" gorm:"type:varchar(255)"`
	Description    string         `json:"description,omitempty" gorm:"type:text"`
	Price          *float64       `json:"price,omitempty"`
	RegularPrice   *float64       `json:"regular_price,omitempty"`
	SalePrice      *float64       `json:"sale_price,omitempty"`
	SalePriceStart *time.Time     `json:"sale_price_start_date,omitempty"`
	SalePriceEnd   *time.Time     `json:"sale_price_end_date,omitempty"`
	StockQuantity  int            `json:"stock_quantity" gorm:"default:0"`
	StockStatus    string         `json:"stock_status" gorm:"type:varchar(20);default:'instock'"`
	ImageID        *uint          `json:"image_id,omitempty"`
	IsDefault      bool           `json:"is_default" gorm:"default:false"`
	SortOrder      int            `json:"sort_order" gorm:"default:0"`
	TenantID       *uint          `json:"tenant_id,omitempty" gorm:"uniqueIndex:idx_variations_tenant_sku;index"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Attributes []VariationAttribute `json:"attributes,omitempty" gorm:"foreignKey:VariationID"`
}

// VariationAttribute binds a variation to one value of one attribute.
type VariationAttribute struct {
	ID          uint  `json:"id" gorm:"primaryKey"`
	VariationID uint  `json:"variation_id" gorm:"uniqueIndex:idx_variation_attributes_var_attr;not null"`
	AttributeID uint  `json:"attribute_id" gorm:"uniqueIndex:idx_variation_attributes_var_attr;not null"`
	ValueID     uint  `json:"value_id" gorm:"not null"`
	TenantID    *uint `json:"tenant_id,omitempty" gorm:"index"`
}
