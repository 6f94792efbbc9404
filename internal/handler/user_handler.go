package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fx0883/productsShow/internal/model"
	"github.com/fx0883/productsShow/pkg/logger"
)

type userStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	ReassignTenant(ctx context.Context, userID uint, tenantID *uint) error
	Delete(ctx context.Context, id uint) error
}

// UserHandler implements tenant-admin user management. Creation goes through
// the quota ledger; everything else reads and writes through the scoped
// gateway, so each admin only ever sees their own tenant's users.
type UserHandler struct {
	users   userStore
	creator userCreator
}

func NewUserHandler(users userStore, creator userCreator) *UserHandler {
	return &UserHandler{
		users:   users,
		creator: creator,
	}
}

// CreateUserRequest defines the payload for admin-driven user creation.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
	IsAdmin  bool   `json:"is_admin"`
}

func (h *UserHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email and password are required"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to process registration"})
	}

	user := model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
		Phone:    req.Phone,
		IsAdmin:  req.IsAdmin,
		IsMember: !req.IsAdmin,
	}

	if err := h.creator.CreateUser(c.Request().Context(), &user); err != nil {
		return writeError(c, log, err)
	}

	log.Info("User created by admin",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.Bool("is_admin", user.IsAdmin))

	user.Password = ""
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return writeError(c, log, err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	user, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, log, err)
	}
	user.Password = ""
	return c.JSON(http.StatusOK, user)
}

// UpdateUserRequest defines the payload for profile and role updates. Role
// changes that would add an admin are still bounded by the admin quota at
// creation time only; flipping an existing user skips the ledger.
type UpdateUserRequest struct {
	Username          string `json:"username"`
	Phone             string `json:"phone"`
	IsAdmin           *bool  `json:"is_admin"`
	PreferredLanguage string `json:"preferred_language"`
	DateFormat        string `json:"date_format"`
}

func (h *UserHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	ctx := c.Request().Context()
	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		return writeError(c, log, err)
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.PreferredLanguage != "" {
		user.PreferredLanguage = req.PreferredLanguage
	}
	if req.DateFormat != "" {
		user.DateFormat = req.DateFormat
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
		user.IsMember = !*req.IsAdmin
	}

	if err := h.users.Update(ctx, user); err != nil {
		return writeError(c, log, err)
	}

	log.Info("User updated", zap.Uint("user_id", id))
	user.Password = ""
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	if callerID, ok := c.Get("user_id").(uint); ok && callerID == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete your own account"})
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, log, err)
	}

	log.Info("User deleted", zap.Uint("user_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// ReassignRequest names the target tenant; null detaches the user.
type ReassignRequest struct {
	TenantID *uint `json:"tenant_id"`
}

// Reassign moves a user to a different tenant. Super-admin only; it is the
// single sanctioned way to change an entity's tenant reference.
func (h *UserHandler) Reassign(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	var req ReassignRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if err := h.users.ReassignTenant(c.Request().Context(), id, req.TenantID); err != nil {
		return writeError(c, log, err)
	}

	log.Info("User reassigned",
		zap.Uint("user_id", id),
		zap.Any("tenant_id", req.TenantID))
	return c.JSON(http.StatusOK, echo.Map{"message": "user reassigned"})
}
