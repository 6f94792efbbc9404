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

type tenantAdminStore interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	GetByID(ctx context.Context, id uint) (*model.Tenant, error)
	List(ctx context.Context) ([]model.Tenant, error)
	Update(ctx context.Context, tenant *model.Tenant) error
	SoftDelete(ctx context.Context, id uint) error
}

type quotaService interface {
	QuotaFor(ctx context.Context, tenantID uint) (*model.TenantQuota, error)
	RecomputeStorageUsage(ctx context.Context, tenantID uint) (float64, error)
}

type quotaCapStore interface {
	UpdateCaps(ctx context.Context, quota *model.TenantQuota) error
}

// TenantHandler implements super-admin tenant management: tenant CRUD with
// soft delete, and quota inspection and updates.
type TenantHandler struct {
	tenants tenantAdminStore
	ledger  quotaService
	quotas  quotaCapStore
}

func NewTenantHandler(tenants tenantAdminStore, ledger quotaService, quotas quotaCapStore) *TenantHandler {
	return &TenantHandler{
		tenants: tenants,
		ledger:  ledger,
		quotas:  quotas,
	}
}

// TenantRequest defines the payload for tenant creation/update.
type TenantRequest struct {
	Name   string `json:"name" validate:"required"`
	Status string `json:"status"`
}

func (h *TenantHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req TenantRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	tenant := model.Tenant{
		Name:   req.Name,
		Status: model.TenantStatusActive,
	}
	if req.Status != "" {
		tenant.Status = req.Status
	}

	ctx := c.Request().Context()
	if err := h.tenants.Create(ctx, &tenant); err != nil {
		return writeError(c, log, err)
	}

	// Provision the quota row up front so caps are visible immediately.
	if _, err := h.ledger.QuotaFor(ctx, tenant.ID); err != nil {
		log.Warn("Failed to provision quota for new tenant",
			zap.Uint("tenant_id", tenant.ID),
			zap.Error(err))
	}

	log.Info("Tenant created", zap.Uint("tenant_id", tenant.ID), zap.String("name", tenant.Name))
	return c.JSON(http.StatusCreated, tenant)
}

func (h *TenantHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	tenants, err := h.tenants.List(c.Request().Context())
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, tenants)
}

func (h *TenantHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant id"})
	}

	ctx := c.Request().Context()
	tenant, err := h.tenants.GetByID(ctx, id)
	if err != nil {
		return writeError(c, log, err)
	}

	// The detail view carries the quota alongside; the storage figure is the
	// cached one maintained by the background recompute loop.
	quota, err := h.ledger.QuotaFor(ctx, id)
	if err != nil {
		return writeError(c, log, err)
	}
	tenant.Quota = quota

	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant id"})
	}

	var req TenantRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.Status != "" && req.Status != model.TenantStatusActive && req.Status != model.TenantStatusSuspended {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be active or suspended"})
	}

	ctx := c.Request().Context()
	tenant, err := h.tenants.GetByID(ctx, id)
	if err != nil {
		return writeError(c, log, err)
	}

	tenant.Name = req.Name
	if req.Status != "" {
		tenant.Status = req.Status
	}
	if err := h.tenants.Update(ctx, tenant); err != nil {
		return writeError(c, log, err)
	}

	log.Info("Tenant updated", zap.Uint("tenant_id", id), zap.String("status", tenant.Status))
	return c.JSON(http.StatusOK, tenant)
}

// Delete soft-deletes the tenant. Its rows stay in place; its principals can
// no longer log in.
func (h *TenantHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant id"})
	}

	if err := h.tenants.SoftDelete(c.Request().Context(), id); err != nil {
		return writeError(c, log, err)
	}

	log.Info("Tenant deleted", zap.Uint("tenant_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "tenant deleted"})
}

// GetQuota returns the tenant's quota with a freshly recomputed storage
// figure. This is the explicit slow path; everything else serves the cache.
func (h *TenantHandler) GetQuota(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant id"})
	}

	ctx := c.Request().Context()
	if _, err := h.tenants.GetByID(ctx, id); err != nil {
		return writeError(c, log, err)
	}

	if _, err := h.ledger.RecomputeStorageUsage(ctx, id); err != nil {
		log.Warn("Storage recompute failed, serving cached figure",
			zap.Uint("tenant_id", id),
			zap.Error(err))
	}

	quota, err := h.ledger.QuotaFor(ctx, id)
	if err != nil {
		return writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, quota)
}

// QuotaRequest defines the payload for quota cap updates.
type QuotaRequest struct {
	MaxUsers     int `json:"max_users" validate:"gt=0"`
	MaxAdmins    int `json:"max_admins" validate:"gt=0"`
	MaxStorageMB int `json:"max_storage_mb" validate:"gt=0"`
	MaxProducts  int `json:"max_products" validate:"gt=0"`
}

func (h *TenantHandler) UpdateQuota(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant id"})
	}

	var req QuotaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.MaxUsers <= 0 || req.MaxAdmins <= 0 || req.MaxStorageMB <= 0 || req.MaxProducts <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all caps must be positive"})
	}

	ctx := c.Request().Context()
	if _, err := h.tenants.GetByID(ctx, id); err != nil {
		return writeError(c, log, err)
	}

	// Ensure the row exists before updating caps.
	quota, err := h.ledger.QuotaFor(ctx, id)
	if err != nil {
		return writeError(c, log, err)
	}

	quota.MaxUsers = req.MaxUsers
	quota.MaxAdmins = req.MaxAdmins
	quota.MaxStorageMB = req.MaxStorageMB
	quota.MaxProducts = req.MaxProducts
	if err := h.quotas.UpdateCaps(ctx, quota); err != nil {
		return writeError(c, log, err)
	}

	log.Info("Quota updated",
		zap.Uint("tenant_id", id),
		zap.Int("max_users", req.MaxUsers),
		zap.Int("max_products", req.MaxProducts))
	return c.JSON(http.StatusOK, quota)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
