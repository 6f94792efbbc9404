package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fx0883/productsShow/internal/middleware"
	"github.com/fx0883/productsShow/internal/model"
	"github.com/fx0883/productsShow/internal/repository"
	"github.com/fx0883/productsShow/pkg/logger"
	"github.com/fx0883/productsShow/prometheus"
)

type productStore interface {
	GetByID(ctx context.Context, id uint) (*model.Product, error)
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)
	List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uint) error
	AddImage(ctx context.Context, image *model.ProductImage) error
	ListImages(ctx context.Context, productID uint) ([]model.ProductImage, error)
	DeleteImage(ctx context.Context, imageID uint) error
	CreateVariation(ctx context.Context, variation *model.ProductVariation) error
	ListVariations(ctx context.Context, productID uint) ([]model.ProductVariation, error)
	DeleteVariation(ctx context.Context, variationID uint) error
}

type productCreator interface {
	CreateProduct(ctx context.Context, product *model.Product) error
}

type storageChecker interface {
	CheckStorageAdd(ctx context.Context, tenantID uint, additionalMB float64) error
}

// ProductHandler implements the product catalog: products, their images and
// their variations. Creation goes through the quota ledger; image uploads
// are bounded by the tenant's storage cap.
type ProductHandler struct {
	products productStore
	creator  productCreator
	storage  storageChecker
}

func NewProductHandler(products productStore, creator productCreator, storage storageChecker) *ProductHandler {
	return &ProductHandler{
		products: products,
		creator:  creator,
		storage:  storage,
	}
}

// ProductRequest defines the payload for product creation and update.
type ProductRequest struct {
	Name             string   `json:"name" validate:"required"`
	SKU              string   `json:"sku" validate:"required"`
	Type             string   `json:"type"`
	Status           string   `json:"status"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	RegularPrice     *float64 `json:"regular_price"`
	SalePrice        *float64 `json:"sale_price"`
	StockQuantity    int      `json:"stock_quantity"`
	StockStatus      string   `json:"stock_status"`
	Brand            string   `json:"brand"`
	GTIN             string   `json:"gtin"`
	CategoryID       *uint    `json:"category_id"`
	Featured         bool     `json:"featured"`
}

func (h *ProductHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" || req.SKU == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and sku are required"})
	}

	product := model.Product{
		Name:             req.Name,
		Slug:             slugify(req.Name),
		SKU:              req.SKU,
		Type:             model.ProductTypeSimple,
		Status:           model.ProductStatusDraft,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		RegularPrice:     req.RegularPrice,
		SalePrice:        req.SalePrice,
		StockQuantity:    req.StockQuantity,
		Brand:            req.Brand,
		GTIN:             req.GTIN,
		CategoryID:       req.CategoryID,
		Featured:         req.Featured,
	}
	if req.Type != "" {
		product.Type = req.Type
	}
	if req.Status != "" {
		product.Status = req.Status
	}
	if req.StockStatus != "" {
		product.StockStatus = req.StockStatus
	}
	product.Price = effectivePrice(req.RegularPrice, req.SalePrice)

	if err := h.creator.CreateProduct(c.Request().Context(), &product); err != nil {
		return writeError(c, log, err)
	}

	prometheus.ProductOperationsCounter.WithLabelValues("create").Inc()
	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	filter := repository.ProductFilter{
		Status: c.QueryParam("status"),
		Type:   c.QueryParam("type"),
		Search: c.QueryParam("search"),
	}
	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category_id"})
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}

	products, err := h.products.List(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	product, err := h.products.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" || req.SKU == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and sku are required"})
	}

	ctx := c.Request().Context()
	product, err := h.products.GetByID(ctx, id)
	if err != nil {
		return writeError(c, log, err)
	}

	product.Name = req.Name
	product.Slug = slugify(req.Name)
	product.SKU = req.SKU
	product.Description = req.Description
	product.ShortDescription = req.ShortDescription
	product.RegularPrice = req.RegularPrice
	product.SalePrice = req.SalePrice
	product.Price = effectivePrice(req.RegularPrice, req.SalePrice)
	product.StockQuantity = req.StockQuantity
	product.Brand = req.Brand
	product.GTIN = req.GTIN
	product.CategoryID = req.CategoryID
	product.Featured = req.Featured
	if req.Type != "" {
		product.Type = req.Type
	}
	if req.Status != "" {
		product.Status = req.Status
	}
	if req.StockStatus != "" {
		product.StockStatus = req.StockStatus
	}

	if err := h.products.Update(ctx, product); err != nil {
		return writeError(c, log, err)
	}

	prometheus.ProductOperationsCounter.WithLabelValues("update").Inc()
	log.Info("Product updated", zap.Uint("product_id", id))
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	if err := h.products.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, log, err)
	}

	prometheus.ProductOperationsCounter.WithLabelValues("delete").Inc()
	log.Info("Product deleted", zap.Uint("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

// ImageRequest registers a media item against a product. SizeBytes counts
// toward the tenant's storage quota.
type ImageRequest struct {
	FilePath   string `json:"file_path"`
	ImageURL   string `json:"image_url"`
	AltText    string `json:"alt_text"`
	SizeBytes  int64  `json:"size_bytes" validate:"gte=0"`
	IsFeatured bool   `json:"is_featured"`
	SortOrder  int    `json:"sort_order"`
}

const bytesPerMB = 1024 * 1024

func (h *ProductHandler) AddImage(c echo.Context) error {
	log := logger.FromContext(c)

	productID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var req ImageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.SizeBytes < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "size_bytes must not be negative"})
	}
	if req.FilePath == "" && req.ImageURL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file_path or image_url is required"})
	}

	ctx := c.Request().Context()
	if tenantID, ok := middleware.GetTenantIDFromContext(c); ok {
		additionalMB := float64(req.SizeBytes) / bytesPerMB
		if err := h.storage.CheckStorageAdd(ctx, tenantID, additionalMB); err != nil {
			return writeError(c, log, err)
		}
	}

	image := model.ProductImage{
		ProductID:  productID,
		FilePath:   req.FilePath,
		ImageURL:   req.ImageURL,
		AltText:    req.AltText,
		SizeBytes:  req.SizeBytes,
		IsFeatured: req.IsFeatured,
		SortOrder:  req.SortOrder,
	}
	if err := h.products.AddImage(ctx, &image); err != nil {
		return writeError(c, log, err)
	}

	log.Info("Product image added",
		zap.Uint("product_id", productID),
		zap.Int64("size_bytes", req.SizeBytes))
	return c.JSON(http.StatusCreated, image)
}

func (h *ProductHandler) ListImages(c echo.Context) error {
	log := logger.FromContext(c)

	productID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	images, err := h.products.ListImages(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, images)
}

func (h *ProductHandler) DeleteImage(c echo.Context) error {
	log := logger.FromContext(c)

	imageID, err := strconv.ParseUint(c.Param("imageId"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid image id"})
	}

	if err := h.products.DeleteImage(c.Request().Context(), uint(imageID)); err != nil {
		return writeError(c, log, err)
	}

	log.Info("Product image deleted", zap.Uint64("image_id", imageID))
	return c.JSON(http.StatusOK, echo.Map{"message": "image deleted"})
}

// VariationRequest defines the payload for variation creation.
type VariationRequest struct {
	SKU           string   `json:"sku" validate:"required"`
	Name          string   `json:"name"`
	RegularPrice  *float64 `json:"regular_price"`
	SalePrice     *float64 `json:"sale_price"`
	StockQuantity int      `json:"stock_quantity"`
	StockStatus   string   `json:"stock_status"`
	IsDefault     bool     `json:"is_default"`
	SortOrder     int      `json:"sort_order"`
}

func (h *ProductHandler) CreateVariation(c echo.Context) error {
	log := logger.FromContext(c)

	productID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var req VariationRequest
	if err := c.Bind(&req); err != nil || req.SKU == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sku is required"})
	}

	variation := model.ProductVariation{
		ProductID:     productID,
		SKU:           req.SKU,
		Name:          req.Name,
		RegularPrice:  req.RegularPrice,
		SalePrice:     req.SalePrice,
		Price:         effectivePrice(req.RegularPrice, req.SalePrice),
		StockQuantity: req.StockQuantity,
		IsDefault:     req.IsDefault,
		SortOrder:     req.SortOrder,
	}
	if req.StockStatus != "" {
		variation.StockStatus = req.StockStatus
	}

	if err := h.products.CreateVariation(c.Request().Context(), &variation); err != nil {
		return writeError(c, log, err)
	}

	log.Info("Variation created",
		zap.Uint("product_id", productID),
		zap.String("sku", variation.SKU))
	return c.JSON(http.StatusCreated, variation)
}

func (h *ProductHandler) ListVariations(c echo.Context) error {
	log := logger.FromContext(c)

	productID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	variations, err := h.products.ListVariations(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, variations)
}

func (h *ProductHandler) DeleteVariation(c echo.Context) error {
	log := logger.FromContext(c)

	variationID, err := strconv.ParseUint(c.Param("variationId"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid variation id"})
	}

	if err := h.products.DeleteVariation(c.Request().Context(), uint(variationID)); err != nil {
		return writeError(c, log, err)
	}

	log.Info("Variation deleted", zap.Uint64("variation_id", variationID))
	return c.JSON(http.StatusOK, echo.Map{"message": "variation deleted"})
}

// effectivePrice applies the sale price when present, falling back to the
// regular price.
func effectivePrice(regular, sale *float64) *float64 {
	if sale != nil {
		return sale
	}
	return regular
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return -1
		}
	}, slug)
}
