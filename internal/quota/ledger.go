// Package quota tracks and enforces per-tenant resource caps: users, admins,
// products and media storage. Checks are advisory reads against current
// counts; by default the check and the subsequent insert are separate steps,
// so two concurrent creations can both pass and overshoot a cap by one. The
// strict mode closes that window by locking the tenant's quota row and
// re-counting inside one transaction.
package quota

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fx0883/productsShow/internal/apperrors"
	"github.com/fx0883/productsShow/internal/model"
	"github.com/fx0883/productsShow/internal/tenantctx"
)

// CountSource provides current usage counts for a tenant.
type CountSource interface {
	CountByTenant(ctx context.Context, tenantID uint) (int64, error)
}

// UserCounts additionally separates admin-flagged users.
type UserCounts interface {
	CountSource
	CountAdminsByTenant(ctx context.Context, tenantID uint) (int64, error)
}

// Store persists quota rows and storage figures.
type Store interface {
	GetOrCreate(ctx context.Context, tenantID uint) (*model.TenantQuota, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, tenantID uint) (*model.TenantQuota, error)
	UpdateStorageUsed(ctx context.Context, tenantID uint, usedMB float64) error
	SumImageSizeBytes(ctx context.Context, tenantID uint) (int64, error)
}

// Ledger answers quota questions and guards quota-bound creations.
type Ledger struct {
	db       *gorm.DB
	store    Store
	users    UserCounts
	products CountSource
	strict   bool
	logger   *zap.Logger
}

func NewLedger(db *gorm.DB, store Store, users UserCounts, products CountSource, strict bool, logger *zap.Logger) *Ledger {
	return &Ledger{
		db:       db,
		store:    store,
		users:    users,
		products: products,
		strict:   strict,
		logger:   logger,
	}
}

// QuotaFor returns the tenant's quota row, creating it with defaults on
// first access.
func (l *Ledger) QuotaFor(ctx context.Context, tenantID uint) (*model.TenantQuota, error) {
	return l.store.GetOrCreate(ctx, tenantID)
}

// UserQuotaExceeded reports whether the tenant's live user count has reached
// its cap. The cap is inclusive: count == max means exceeded.
func (l *Ledger) UserQuotaExceeded(ctx context.Context, tenantID uint) (bool, error) {
	quota, err := l.store.GetOrCreate(ctx, tenantID)
	if err != nil {
		return false, err
	}
	count, err := l.users.CountByTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return count >= int64(quota.MaxUsers), nil
}

// AdminQuotaExceeded reports whether the tenant's admin count has reached
// its cap.
func (l *Ledger) AdminQuotaExceeded(ctx context.Context, tenantID uint) (bool, error) {
	quota, err := l.store.GetOrCreate(ctx, tenantID)
	if err != nil {
		return false, err
	}
	count, err := l.users.CountAdminsByTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return count >= int64(quota.MaxAdmins), nil
}

// ProductQuotaExceeded reports whether the tenant's product count has
// reached its cap.
func (l *Ledger) ProductQuotaExceeded(ctx context.Context, tenantID uint) (bool, error) {
	quota, err := l.store.GetOrCreate(ctx, tenantID)
	if err != nil {
		return false, err
	}
	count, err := l.products.CountByTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return count >= int64(quota.MaxProducts), nil
}

// StorageQuotaExceeded reports whether used + additional would breach the
// storage cap. Unlike the count checks this boundary is exclusive: landing
// exactly on the cap is allowed. The asymmetry is deliberate and matched by
// the tests.
func (l *Ledger) StorageQuotaExceeded(ctx context.Context, tenantID uint, additionalMB float64) (bool, error) {
	quota, err := l.store.GetOrCreate(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return quota.CurrentStorageUsedMB+additionalMB > float64(quota.MaxStorageMB), nil
}

// CheckUserCreate runs the advisory quota checks that precede a user
// creation. It returns a QuotaExceededError naming the breached cap.
func (l *Ledger) CheckUserCreate(ctx context.Context, tenantID uint, isAdmin bool) error {
	quota, err := l.store.GetOrCreate(ctx, tenantID)
	if err != nil {
		return err
	}

	count, err := l.users.CountByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if count >= int64(quota.MaxUsers) {
		return &apperrors.QuotaExceededError{
			Kind:    apperrors.QuotaKindUsers,
			Limit:   quota.MaxUsers,
			Current: float64(count),
		}
	}

	if isAdmin {
		admins, err := l.users.CountAdminsByTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		if admins >= int64(quota.MaxAdmins) {
			return &apperrors.QuotaExceededError{
				Kind:    apperrors.QuotaKindAdmins,
				Limit:   quota.MaxAdmins,
				Current: float64(admins),
			}
		}
	}
	return nil
}

// CheckProductCreate runs the advisory product quota check.
func (l *Ledger) CheckProductCreate(ctx context.Context, tenantID uint) error {
	quota, err := l.store.GetOrCreate(ctx, tenantID)
	if err != nil {
		return err
	}
	count, err := l.products.CountByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if count >= int64(quota.MaxProducts) {
		return &apperrors.QuotaExceededError{
			Kind:    apperrors.QuotaKindProducts,
			Limit:   quota.MaxProducts,
			Current: float64(count),
		}
	}
	return nil
}

// CheckStorageAdd runs the storage quota check for additionalMB of new media.
func (l *Ledger) CheckStorageAdd(ctx context.Context, tenantID uint, additionalMB float64) error {
	quota, err := l.store.GetOrCreate(ctx, tenantID)
	if err != nil {
		return err
	}
	if quota.CurrentStorageUsedMB+additionalMB > float64(quota.MaxStorageMB) {
		return &apperrors.QuotaExceededError{
			Kind:    apperrors.QuotaKindStorage,
			Limit:   quota.MaxStorageMB,
			Current: quota.CurrentStorageUsedMB,
		}
	}
	return nil
}

// CreateUser inserts a user under quota enforcement. The tenant reference
// defaults from the context. Super-admin accounts are tenant-less and bypass
// quotas entirely.
//
// In strict mode the quota row is locked and counts re-read inside the
// insert transaction, so concurrent creations serialize instead of
// overshooting the cap.
func (l *Ledger) CreateUser(ctx context.Context, user *model.User) error {
	if user.IsSuperAdmin {
		return l.db.WithContext(ctx).Create(user).Error
	}

	tenantID, err := resolveTenant(ctx, user.TenantID)
	if err != nil {
		return err
	}
	user.TenantID = &tenantID

	if !l.strict {
		if err := l.CheckUserCreate(ctx, tenantID, user.IsAdmin); err != nil {
			return err
		}
		return l.db.WithContext(ctx).Create(user).Error
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quota, err := l.store.GetForUpdate(ctx, tx, tenantID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.User{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if count >= int64(quota.MaxUsers) {
			return &apperrors.QuotaExceededError{
				Kind:    apperrors.QuotaKindUsers,
				Limit:   quota.MaxUsers,
				Current: float64(count),
			}
		}

		if user.IsAdmin {
			var admins int64
			if err := tx.Model(&model.User{}).
				Where("tenant_id = ? AND is_admin = ?", tenantID, true).
				Count(&admins).Error; err != nil {
				return fmt.Errorf("failed to count admins: %w", err)
			}
			if admins >= int64(quota.MaxAdmins) {
				return &apperrors.QuotaExceededError{
					Kind:    apperrors.QuotaKindAdmins,
					Limit:   quota.MaxAdmins,
					Current: float64(admins),
				}
			}
		}

		return tx.Create(user).Error
	})
}

// CreateProduct inserts a product under quota enforcement, mirroring
// CreateUser.
func (l *Ledger) CreateProduct(ctx context.Context, product *model.Product) error {
	tenantID, err := resolveTenant(ctx, product.TenantID)
	if err != nil {
		return err
	}
	product.TenantID = &tenantID

	if !l.strict {
		if err := l.CheckProductCreate(ctx, tenantID); err != nil {
			return err
		}
		return l.db.WithContext(ctx).Create(product).Error
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quota, err := l.store.GetForUpdate(ctx, tx, tenantID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Product{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if count >= int64(quota.MaxProducts) {
			return &apperrors.QuotaExceededError{
				Kind:    apperrors.QuotaKindProducts,
				Limit:   quota.MaxProducts,
				Current: float64(count),
			}
		}

		return tx.Create(product).Error
	})
}

func resolveTenant(ctx context.Context, explicit *uint) (uint, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if tenantID, ok := tenantctx.TenantID(ctx); ok {
		return tenantID, nil
	}
	return 0, apperrors.ErrMissingTenantContext
}
