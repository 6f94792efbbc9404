package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fx0883/productsShow/internal/apperrors"
	"github.com/fx0883/productsShow/internal/model"
)

// TokenRepository records issued JWTs so logout can revoke them and refresh
// can verify them. Tokens are user-scoped rather than tenant-scoped: the
// auth flow runs before a tenant is bound.
type TokenRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewTokenRepository(db *gorm.DB, logger *zap.Logger) *TokenRepository {
	return &TokenRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TokenRepository) Create(ctx context.Context, token *model.UserToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// FindValid returns the stored token if it exists, is still flagged valid
// and has not expired.
func (r *TokenRepository) FindValid(ctx context.Context, token, tokenType string) (*model.UserToken, error) {
	var stored model.UserToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND token_type = ? AND is_valid = ? AND expired_at > ?",
			token, tokenType, true, time.Now()).
		First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	return &stored, nil
}

// RevokeAllForUser invalidates every live token of a user, e.g. on logout.
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Model(&model.UserToken{}).
		Where("user_id = ? AND is_valid = ?", userID, true).
		Update("is_valid", false).Error
	if err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}

	r.logger.Info("Tokens revoked", zap.Uint("user_id", userID))
	return nil
}

// PurgeExpired removes token rows past their expiry. Called periodically.
func (r *TokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expired_at < ?", time.Now()).
		Delete(&model.UserToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
