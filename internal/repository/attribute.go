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

// AttributeRepository manages attribute definitions and their values.
type AttributeRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAttributeRepository(db *gorm.DB, logger *zap.Logger) *AttributeRepository {
	return &AttributeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AttributeRepository) Create(ctx context.Context, attribute *model.Attribute) error {
	tenantID, err := ResolveTenantID(ctx, attribute.TenantID)
	if err != nil {
		return err
	}
	attribute.TenantID = tenantID
	for i := range attribute.Values {
		attribute.Values[i].TenantID = tenantID
	}

	if err := r.db.WithContext(ctx).Create(attribute).Error; err != nil {
		r.logger.Error("Failed to create attribute", zap.String("slug", attribute.Slug), zap.Error(err))
		return fmt.Errorf("failed to create attribute: %w", err)
	}
	return nil
}

func (r *AttributeRepository) GetByID(ctx context.Context, id uint) (*model.Attribute, error) {
	var attribute model.Attribute
	err := Scoped(ctx, r.db).Preload("Values").First(&attribute, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get attribute: %w", err)
	}
	return &attribute, nil
}

func (r *AttributeRepository) List(ctx context.Context) ([]model.Attribute, error) {
	var attributes []model.Attribute
	err := Scoped(ctx, r.db).Preload("Values").Order("name").Find(&attributes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	return attributes, nil
}

func (r *AttributeRepository) AddValue(ctx context.Context, value *model.AttributeValue) error {
	if _, err := r.GetByID(ctx, value.AttributeID); err != nil {
		return err
	}

	tenantID, err := ResolveTenantID(ctx, value.TenantID)
	if err != nil {
		return err
	}
	value.TenantID = tenantID

	if err := r.db.WithContext(ctx).Create(value).Error; err != nil {
		return fmt.Errorf("failed to add attribute value: %w", err)
	}
	return nil
}

func (r *AttributeRepository) Delete(ctx context.Context, id uint) error {
	result := Scoped(ctx, r.db).Delete(&model.Attribute{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete attribute: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
