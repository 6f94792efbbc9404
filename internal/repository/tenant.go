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

// TenantRepository manages tenant rows. Tenants themselves are not
// tenant-scoped; every method here is super-admin territory and the handlers
// gate access accordingly.
type TenantRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewTenantRepository(db *gorm.DB, logger *zap.Logger) *TenantRepository {
	return &TenantRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *model.Tenant) error {
	if tenant.Status == "" {
		tenant.Status = model.TenantStatusActive
	}
	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		r.logger.Error("Failed to create tenant", zap.String("name", tenant.Name), zap.Error(err))
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	r.logger.Info("Tenant created",
		zap.Uint("tenant_id", tenant.ID),
		zap.String("name", tenant.Name))
	return nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id uint) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.db.WithContext(ctx).First(&tenant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &tenant, nil
}

func (r *TenantRepository) GetByName(ctx context.Context, name string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by name: %w", err)
	}
	return &tenant, nil
}

// List returns all tenants that are not soft deleted.
func (r *TenantRepository) List(ctx context.Context) ([]model.Tenant, error) {
	var tenants []model.Tenant
	err := r.db.WithContext(ctx).Where("is_deleted = ?", false).Order("id").Find(&tenants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

func (r *TenantRepository) Update(ctx context.Context, tenant *model.Tenant) error {
	result := r.db.WithContext(ctx).Model(&model.Tenant{}).
		Where("id = ?", tenant.ID).
		Updates(map[string]interface{}{
			"name":   tenant.Name,
			"status": tenant.Status,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update tenant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTenantNotFound
	}
	return nil
}

// SoftDelete marks the tenant deleted without removing the row. Child
// entities are left in place; they become unreachable because logins for a
// non-active tenant are rejected.
func (r *TenantRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&model.Tenant{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"status":     model.TenantStatusDeleted,
			"is_deleted": true,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to delete tenant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTenantNotFound
	}

	r.logger.Info("Tenant soft deleted", zap.Uint("tenant_id", id))
	return nil
}
