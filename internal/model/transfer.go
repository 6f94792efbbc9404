package model

import (
	"time"
)

// Import/export job status values.
const (
	TransferStatusPending    = "pending"
	TransferStatusProcessing = "processing"
	TransferStatusCompleted  = "completed"
	TransferStatusFailed     = "failed"
)

// CSV formats understood by the importer and exporter.
const (
	TransferFormatWooCommerce = "woocommerce"
	TransferFormatCustom      = "custom"
)

// ImportRecord is the history entry of one CSV import run.
type ImportRecord struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"index;not null"`
	FileName       string    `json:"file_name" gorm:"type:varchar(255);not null"`
	FilePath       string    `json:"file_path" gorm:"type:varchar(255)"`
	Format         string    `json:"format" gorm:"type:varchar(20);default:'woocommerce'"`
	Status         string    `json:"status" gorm:"type:varchar(20);default:'pending'"`
	TotalRows      int       `json:"total_rows" gorm:"default:0"`
	ProcessedRows  int       `json:"processed_rows" gorm:"default:0"`
	SuccessRows    int       `json:"success_rows" gorm:"default:0"`
	ErrorRows      int       `json:"error_rows" gorm:"default:0"`
	ProductCount   int       `json:"product_count" gorm:"default:0"`
	VariationCount int       `json:"variation_count" gorm:"default:0"`
	ErrorLog       string    `json:"error_log,omitempty" gorm:"type:text"`
	TenantID       *uint     `json:"tenant_id,omitempty" gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ExportRecord is the history entry of one CSV export run.
type ExportRecord struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"index;not null"`
	FileName       string    `json:"file_name" gorm:"type:varchar(255);not null"`
	FilePath       string    `json:"file_path" gorm:"type:varchar(255)"`
	Format         string    `json:"format" gorm:"type:varchar(20);default:'woocommerce'"`
	ProductCount   int       `json:"product_count" gorm:"default:0"`
	VariationCount int       `json:"variation_count" gorm:"default:0"`
	TenantID       *uint     `json:"tenant_id,omitempty" gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
}
