package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fx0883/productsShow/internal/model"
	"github.com/fx0883/productsShow/pkg/config"
	"github.com/fx0883/productsShow/prometheus"
)

// QuotaRepository persists tenant quota rows and the usage figures backing
// the quota ledger.
type QuotaRepository struct {
	db       *gorm.DB
	defaults config.QuotaConfig
	logger   *zap.Logger
}

func NewQuotaRepository(db *gorm.DB, defaults config.QuotaConfig, logger *zap.Logger) *QuotaRepository {
	return &QuotaRepository{
		db:       db,
		defaults: defaults,
		logger:   logger,
	}
}

// GetOrCreate returns the tenant's quota row, creating it with default caps
// on first access. The insert uses ON CONFLICT DO NOTHING against the unique
// tenant_id index, so two concurrent first accesses still end up with exactly
// one row.
func (r *QuotaRepository) GetOrCreate(ctx context.Context, tenantID uint) (*model.TenantQuota, error) {
	quota := model.TenantQuota{
		TenantID:     tenantID,
		MaxUsers:     r.defaults.DefaultMaxUsers,
		MaxAdmins:    r.defaults.DefaultMaxAdmins,
		MaxStorageMB: r.defaults.DefaultMaxStorage,
		MaxProducts:  r.defaults.DefaultMaxProducts,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoNothing: true,
		}).
		Create(&quota).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create quota: %w", err)
	}

	// Re-read regardless of whether the insert won: on conflict the struct
	// above holds defaults, not the persisted caps.
	var persisted model.TenantQuota
	err = r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&persisted).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load quota: %w", err)
	}
	return &persisted, nil
}

// GetForUpdate loads the quota row inside tx with a row lock, creating it
// first if missing. Used by the strict quota enforcement mode to serialize
// check-then-create.
func (r *QuotaRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, tenantID uint) (*model.TenantQuota, error) {
	if _, err := r.GetOrCreate(ctx, tenantID); err != nil {
		return nil, err
	}

	var quota model.TenantQuota
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ?", tenantID).
		First(&quota).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock quota row: %w", err)
	}
	return &quota, nil
}

// UpdateCaps overwrites the tenant's caps. Super-admin only; enforced by the
// handler layer.
func (r *QuotaRepository) UpdateCaps(ctx context.Context, quota *model.TenantQuota) error {
	result := r.db.WithContext(ctx).Model(&model.TenantQuota{}).
		Where("tenant_id = ?", quota.TenantID).
		Updates(map[string]interface{}{
			"max_users":      quota.MaxUsers,
			"max_admins":     quota.MaxAdmins,
			"max_storage_mb": quota.MaxStorageMB,
			"max_products":   quota.MaxProducts,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update quota caps: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no quota row for tenant %d", quota.TenantID)
	}
	return nil
}

// UpdateStorageUsed persists a freshly recomputed storage figure.
func (r *QuotaRepository) UpdateStorageUsed(ctx context.Context, tenantID uint, usedMB float64) error {
	err := r.db.WithContext(ctx).Model(&model.TenantQuota{}).
		Where("tenant_id = ?", tenantID).
		Update("current_storage_used_mb", usedMB).Error
	if err != nil {
		return fmt.Errorf("failed to update storage usage: %w", err)
	}
	return nil
}

// SumImageSizeBytes totals the stored media bytes for a tenant's products.
// This walks every image row of the tenant; callers treat it as slow and run
// it off the request path.
func (r *QuotaRepository) SumImageSizeBytes(ctx context.Context, tenantID uint) (int64, error) {
	defer prometheus.TrackDBOperation("sum_image_sizes")(time.Now())

	var total int64
	err := r.db.WithContext(ctx).Model(&model.ProductImage{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(SUM(size_bytes), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum image sizes: %w", err)
	}
	return total, nil
}
