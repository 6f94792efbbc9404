package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fx0883/productsShow/internal/apperrors"
	"github.com/fx0883/productsShow/internal/model"
)

// TransferRepository manages CSV import/export job history.
type TransferRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewTransferRepository(db *gorm.DB, logger *zap.Logger) *TransferRepository {
	return &TransferRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TransferRepository) CreateImport(ctx context.Context, record *model.ImportRecord) error {
	tenantID, err := ResolveTenantID(ctx, record.TenantID)
	if err != nil {
		return err
	}
	record.TenantID = tenantID

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create import record: %w", err)
	}
	return nil
}

func (r *TransferRepository) UpdateImport(ctx context.Context, record *model.ImportRecord) error {
	err := r.db.WithContext(ctx).Model(&model.ImportRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"status":          record.Status,
			"total_rows":      record.TotalRows,
			"processed_rows":  record.ProcessedRows,
			"success_rows":    record.SuccessRows,
			"error_rows":      record.ErrorRows,
			"product_count":   record.ProductCount,
			"variation_count": record.VariationCount,
			"error_log":       record.ErrorLog,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update import record: %w", err)
	}
	return nil
}

func (r *TransferRepository) GetImport(ctx context.Context, id uint) (*model.ImportRecord, error) {
	var record model.ImportRecord
	err := Scoped(ctx, r.db).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get import record: %w", err)
	}
	return &record, nil
}

func (r *TransferRepository) ListImports(ctx context.Context) ([]model.ImportRecord, error) {
	var records []model.ImportRecord
	err := Scoped(ctx, r.db).Order("created_at DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list import records: %w", err)
	}
	return records, nil
}

func (r *TransferRepository) CreateExport(ctx context.Context, record *model.ExportRecord) error {
	tenantID, err := ResolveTenantID(ctx, record.TenantID)
	if err != nil {
		return err
	}
	record.TenantID = tenantID

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create export record: %w", err)
	}

	r.logger.Info("Export recorded",
		zap.Uint("export_id", record.ID),
		zap.String("file_name", record.FileName))
	return nil
}

func (r *TransferRepository) ListExports(ctx context.Context) ([]model.ExportRecord, error) {
	var records []model.ExportRecord
	err := Scoped(ctx, r.db).Order("created_at DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list export records: %w", err)
	}
	return records, nil
}
