package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fx0883/productsShow/internal/model"
	"github.com/fx0883/productsShow/pkg/logger"
)

type attributeStore interface {
	Create(ctx context.Context, attribute *model.Attribute) error
	GetByID(ctx context.Context, id uint) (*model.Attribute, error)
	List(ctx context.Context) ([]model.Attribute, error)
	AddValue(ctx context.Context, value *model.AttributeValue) error
	Delete(ctx context.Context, id uint) error
}

// AttributeHandler implements product attribute and attribute value
// management.
type AttributeHandler struct {
	attributes attributeStore
}

func NewAttributeHandler(attributes attributeStore) *AttributeHandler {
	return &AttributeHandler{attributes: attributes}
}

// AttributeRequest defines the payload for attribute creation, optionally
// with an initial value set.
type AttributeRequest struct {
	Name                string   `json:"name" validate:"required"`
	Description         string   `json:"description"`
	HasPredefinedValues *bool    `json:"has_predefined_values"`
	Values              []string `json:"values"`
}

func (h *AttributeHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req AttributeRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	attribute := model.Attribute{
		Name:                req.Name,
		Slug:                slugify(req.Name),
		Description:         req.Description,
		HasPredefinedValues: true,
	}
	if req.HasPredefinedValues != nil {
		attribute.HasPredefinedValues = *req.HasPredefinedValues
	}
	for i, name := range req.Values {
		attribute.Values = append(attribute.Values, model.AttributeValue{
			Name:      name,
			Slug:      slugify(name),
			SortOrder: i,
		})
	}

	if err := h.attributes.Create(c.Request().Context(), &attribute); err != nil {
		return writeError(c, log, err)
	}

	log.Info("Attribute created",
		zap.Uint("attribute_id", attribute.ID),
		zap.String("name", attribute.Name),
		zap.Int("values", len(attribute.Values)))
	return c.JSON(http.StatusCreated, attribute)
}

func (h *AttributeHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	attributes, err := h.attributes.List(c.Request().Context())
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, attributes)
}

func (h *AttributeHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid attribute id"})
	}

	attribute, err := h.attributes.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, attribute)
}

// ValueRequest defines the payload for adding one value to an attribute.
type ValueRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

func (h *AttributeHandler) AddValue(c echo.Context) error {
	log := logger.FromContext(c)

	attributeID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid attribute id"})
	}

	var req ValueRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	value := model.AttributeValue{
		AttributeID: attributeID,
		Name:        req.Name,
		Slug:        slugify(req.Name),
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}
	if err := h.attributes.AddValue(c.Request().Context(), &value); err != nil {
		return writeError(c, log, err)
	}

	log.Info("Attribute value added",
		zap.Uint("attribute_id", attributeID),
		zap.String("name", value.Name))
	return c.JSON(http.StatusCreated, value)
}

func (h *AttributeHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid attribute id"})
	}

	if err := h.attributes.Delete(c.Request().Context(), uint(id)); err != nil {
		return writeError(c, log, err)
	}

	log.Info("Attribute deleted", zap.Uint64("attribute_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "attribute deleted"})
}
