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

// CategoryRepository manages categories and tags through the scoped gateway.
type CategoryRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCategoryRepository(db *gorm.DB, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	tenantID, err := ResolveTenantID(ctx, category.TenantID)
	if err != nil {
		return err
	}
	category.TenantID = tenantID

	// A parent from another tenant must not be reachable.
	if category.ParentID != nil {
		if _, err := r.GetByID(ctx, *category.ParentID); err != nil {
			return fmt.Errorf("parent category: %w", err)
		}
	}

	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		r.logger.Error("Failed to create category", zap.String("slug", category.Slug), zap.Error(err))
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	err := Scoped(ctx, r.db).First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// List returns the tenant's categories with children preloaded one level
// deep, ordered for tree rendering.
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := Scoped(ctx, r.db).
		Preload("Children").
		Order("name").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	result := Scoped(ctx, r.db).Model(&model.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":        category.Name,
			"short_name":  category.ShortName,
			"slug":        category.Slug,
			"parent_id":   category.ParentID,
			"description": category.Description,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	result := Scoped(ctx, r.db).Delete(&model.Category{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// --- Tags ---

func (r *CategoryRepository) CreateTag(ctx context.Context, tag *model.Tag) error {
	tenantID, err := ResolveTenantID(ctx, tag.TenantID)
	if err != nil {
		return err
	}
	tag.TenantID = tenantID

	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

func (r *CategoryRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := Scoped(ctx, r.db).Order("name").Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (r *CategoryRepository) DeleteTag(ctx context.Context, id uint) error {
	result := Scoped(ctx, r.db).Delete(&model.Tag{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete tag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
