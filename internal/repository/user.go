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

// UserRepository manages user rows through the scoped gateway. Reads are
// restricted to the tenant bound in the context; a super-admin context sees
// every tenant's users.
type UserRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserRepository(db *gorm.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a user. The tenant reference defaults to the context's
// tenant unless the caller supplied one. Super-admin accounts are the one
// entity allowed to exist tenant-less.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if !user.IsSuperAdmin {
		tenantID, err := ResolveTenantID(ctx, user.TenantID)
		if err != nil {
			return err
		}
		user.TenantID = tenantID
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.logger.Error("Failed to create user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("User created",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email))
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := Scoped(ctx, r.db).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail looks a user up for authentication. Login happens before any
// tenant is bound, so this read is deliberately unrestricted.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := Unrestricted(ctx, r.db, r.logger, "login lookup").
		Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := Scoped(ctx, r.db).Order("id").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	result := Scoped(ctx, r.db).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"username":           user.Username,
			"phone":              user.Phone,
			"is_admin":           user.IsAdmin,
			"is_member":          user.IsMember,
			"preferred_language": user.PreferredLanguage,
			"date_format":        user.DateFormat,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ReassignTenant moves a user to another tenant. This is the only path that
// changes a persisted entity's tenant reference, and it is super-admin only.
func (r *UserRepository) ReassignTenant(ctx context.Context, userID uint, tenantID *uint) error {
	result := Unrestricted(ctx, r.db, r.logger, "user tenant reassignment").
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("tenant_id", tenantID)
	if result.Error != nil {
		return fmt.Errorf("failed to reassign user tenant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	r.logger.Info("User reassigned to tenant",
		zap.Uint("user_id", userID),
		zap.Any("tenant_id", tenantID))
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	result := Scoped(ctx, r.db).Delete(&model.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountByTenant returns the number of live users in a tenant. Quota checks
// read this, so it counts regardless of the context's tenant.
func (r *UserRepository) CountByTenant(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// CountAdminsByTenant returns the number of admin-flagged users in a tenant.
func (r *UserRepository) CountAdminsByTenant(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("tenant_id = ? AND is_admin = ?", tenantID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}
