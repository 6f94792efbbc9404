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

// ProductFilter narrows List results.
type ProductFilter struct {
	Status     string
	Type       string
	CategoryID *uint
	Search     string
}

// ProductRepository manages products, their images and variations through
// the scoped gateway.
type ProductRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewProductRepository(db *gorm.DB, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	tenantID, err := ResolveTenantID(ctx, product.TenantID)
	if err != nil {
		return err
	}
	product.TenantID = tenantID

	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		r.logger.Error("Failed to create product", zap.String("sku", product.SKU), zap.Error(err))
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("sku", product.SKU))
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := Scoped(ctx, r.db).
		Preload("Images").
		Preload("Variations").
		Preload("Variations.Attributes").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	err := Scoped(ctx, r.db).Where("sku = ?", sku).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by sku: %w", err)
	}
	return &product, nil
}

func (r *ProductRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	query := Scoped(ctx, r.db).Model(&model.Product{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ? OR sku ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	var products []model.Product
	err := query.Order("menu_order, created_at DESC").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *model.Product) error {
	result := Scoped(ctx, r.db).Model(&model.Product{}).
		Where("id = ?", product.ID).
		Select("name", "slug", "sku", "type", "status", "featured", "catalog_visibility",
			"description", "short_description", "price", "regular_price", "sale_price",
			"sale_price_start", "sale_price_end", "menu_order", "stock_quantity",
			"stock_status", "weight", "length", "width", "height", "brand", "gtin",
			"category_id").
		Updates(product)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	result := Scoped(ctx, r.db).Delete(&model.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountByTenant returns the number of live products in a tenant for quota
// checks, regardless of the context's tenant.
func (r *ProductRepository) CountByTenant(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// AddImage attaches a media item to a product owned by the context's tenant.
func (r *ProductRepository) AddImage(ctx context.Context, image *model.ProductImage) error {
	// The parent product must be visible in this context before we accept
	// media for it.
	if _, err := r.GetByID(ctx, image.ProductID); err != nil {
		return err
	}

	tenantID, err := ResolveTenantID(ctx, image.TenantID)
	if err != nil {
		return err
	}
	image.TenantID = tenantID

	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to add product image: %w", err)
	}
	return nil
}

func (r *ProductRepository) ListImages(ctx context.Context, productID uint) ([]model.ProductImage, error) {
	var images []model.ProductImage
	err := Scoped(ctx, r.db).
		Where("product_id = ?", productID).
		Order("sort_order").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}
	return images, nil
}

func (r *ProductRepository) DeleteImage(ctx context.Context, imageID uint) error {
	result := Scoped(ctx, r.db).Delete(&model.ProductImage{}, imageID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CreateVariation adds a variation under a product visible in this context.
func (r *ProductRepository) CreateVariation(ctx context.Context, variation *model.ProductVariation) error {
	if _, err := r.GetByID(ctx, variation.ProductID); err != nil {
		return err
	}

	tenantID, err := ResolveTenantID(ctx, variation.TenantID)
	if err != nil {
		return err
	}
	variation.TenantID = tenantID

	if err := r.db.WithContext(ctx).Create(variation).Error; err != nil {
		return fmt.Errorf("failed to create variation: %w", err)
	}
	return nil
}

func (r *ProductRepository) ListVariations(ctx context.Context, productID uint) ([]model.ProductVariation, error) {
	var variations []model.ProductVariation
	err := Scoped(ctx, r.db).
		Preload("Attributes").
		Where("product_id = ?", productID).
		Order("sort_order").
		Find(&variations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list variations: %w", err)
	}
	return variations, nil
}

func (r *ProductRepository) DeleteVariation(ctx context.Context, variationID uint) error {
	result := Scoped(ctx, r.db).Delete(&model.ProductVariation{}, variationID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete variation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
