package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fx0883/productsShow/internal/model"
	"github.com/fx0883/productsShow/pkg/logger"
	"github.com/fx0883/productsShow/prometheus"
)

type categoryStore interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id uint) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uint) error
	CreateTag(ctx context.Context, tag *model.Tag) error
	ListTags(ctx context.Context) ([]model.Tag, error)
	DeleteTag(ctx context.Context, id uint) error
}

// CategoryHandler implements category tree and tag management.
type CategoryHandler struct {
	categories categoryStore
}

func NewCategoryHandler(categories categoryStore) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// CategoryRequest defines the payload for category creation and update.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	ShortName   string `json:"short_name"`
	ParentID    *uint  `json:"parent_id"`
	Description string `json:"description"`
}

func (h *CategoryHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req CategoryRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	category := model.Category{
		Name:        req.Name,
		ShortName:   req.ShortName,
		Slug:        slugify(req.Name),
		ParentID:    req.ParentID,
		Description: req.Description,
	}
	if err := h.categories.Create(c.Request().Context(), &category); err != nil {
		return writeError(c, log, err)
	}

	prometheus.CategoryOperationsCounter.WithLabelValues("create").Inc()
	log.Info("Category created",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name))
	return c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	categories, err := h.categories.List(c.Request().Context())
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	category, err := h.categories.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.ParentID != nil && *req.ParentID == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category cannot be its own parent"})
	}

	ctx := c.Request().Context()
	category, err := h.categories.GetByID(ctx, id)
	if err != nil {
		return writeError(c, log, err)
	}

	category.Name = req.Name
	category.ShortName = req.ShortName
	category.Slug = slugify(req.Name)
	category.ParentID = req.ParentID
	category.Description = req.Description

	if err := h.categories.Update(ctx, category); err != nil {
		return writeError(c, log, err)
	}

	prometheus.CategoryOperationsCounter.WithLabelValues("update").Inc()
	log.Info("Category updated", zap.Uint("category_id", id))
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	if err := h.categories.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, log, err)
	}

	prometheus.CategoryOperationsCounter.WithLabelValues("delete").Inc()
	log.Info("Category deleted", zap.Uint("category_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}

// TagRequest defines the payload for tag creation.
type TagRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (h *CategoryHandler) CreateTag(c echo.Context) error {
	log := logger.FromContext(c)

	var req TagRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	tag := model.Tag{
		Name:        req.Name,
		Slug:        slugify(req.Name),
		Description: req.Description,
	}
	if err := h.categories.CreateTag(c.Request().Context(), &tag); err != nil {
		return writeError(c, log, err)
	}

	log.Info("Tag created", zap.Uint("tag_id", tag.ID), zap.String("name", tag.Name))
	return c.JSON(http.StatusCreated, tag)
}

func (h *CategoryHandler) ListTags(c echo.Context) error {
	log := logger.FromContext(c)

	tags, err := h.categories.ListTags(c.Request().Context())
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *CategoryHandler) DeleteTag(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tag id"})
	}

	if err := h.categories.DeleteTag(c.Request().Context(), uint(id)); err != nil {
		return writeError(c, log, err)
	}

	log.Info("Tag deleted", zap.Uint64("tag_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "tag deleted"})
}
