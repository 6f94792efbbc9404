package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fx0883/productsShow/internal/model"
	"github.com/fx0883/productsShow/pkg/jwtutil"
	"github.com/fx0883/productsShow/pkg/logger"
	"github.com/fx0883/productsShow/prometheus"
)

type authUserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type userCreator interface {
	CreateUser(ctx context.Context, user *model.User) error
}

type tokenStore interface {
	Create(ctx context.Context, token *model.UserToken) error
	FindValid(ctx context.Context, token, tokenType string) (*model.UserToken, error)
	RevokeAllForUser(ctx context.Context, userID uint) error
}

type authTenantStore interface {
	GetByID(ctx context.Context, id uint) (*model.Tenant, error)
}

// AuthHandler implements registration, login, token refresh and logout.
type AuthHandler struct {
	users   authUserStore
	creator userCreator
	tokens  tokenStore
	tenants authTenantStore
}

func NewAuthHandler(users authUserStore, creator userCreator, tokens tokenStore, tenants authTenantStore) *AuthHandler {
	return &AuthHandler{
		users:   users,
		creator: creator,
		tokens:  tokens,
		tenants: tenants,
	}
}

// RegisterRequest defines the payload for self-registration into a tenant.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
	TenantID uint   `json:"tenant_id" validate:"required"`
}

// Register creates a member account in a tenant, subject to the tenant's
// user quota.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Username == "" || req.Email == "" || req.Password == "" || req.TenantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email, password and tenant_id are required"})
	}

	ctx := c.Request().Context()

	tenant, err := h.tenants.GetByID(ctx, req.TenantID)
	if err != nil {
		return writeError(c, log, err)
	}
	if tenant.Status != model.TenantStatusActive {
		log.Warn("Registration into non-active tenant rejected",
			zap.Uint("tenant_id", tenant.ID),
			zap.String("status", tenant.Status))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant is not active"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	user := model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
		Phone:    req.Phone,
		TenantID: &req.TenantID,
		IsMember: true,
	}
	if err := h.creator.CreateUser(ctx, &user); err != nil {
		return writeError(c, log, err)
	}

	log.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.Uint("tenant_id", req.TenantID))
	user.Password = ""
	return c.JSON(http.StatusCreated, user)
}

// LoginRequest defines the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials, rejects principals of non-active tenants and
// issues an access/refresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ctx := c.Request().Context()

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	var tenantName string
	if user.TenantID != nil {
		tenant, err := h.tenants.GetByID(ctx, *user.TenantID)
		if err != nil {
			return writeError(c, log, err)
		}
		if tenant.Status != model.TenantStatusActive {
			log.Warn("Login rejected for non-active tenant",
				zap.Uint("tenant_id", tenant.ID),
				zap.String("status", tenant.Status))
			prometheus.RecordAuthError("tenant_inactive")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant is not active"})
		}
		tenantName = tenant.Name
	}

	role := "member"
	if user.IsAdmin {
		role = "admin"
	}

	access, accessExp, err := jwtutil.GenerateAccessToken(user.Email, user.ID, user.TenantID, tenantName, role, user.IsSuperAdmin)
	if err != nil {
		log.Error("Failed to generate access token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}
	refresh, refreshExp, err := jwtutil.GenerateRefreshToken(user.Email, user.ID, user.TenantID, tenantName, role, user.IsSuperAdmin)
	if err != nil {
		log.Error("Failed to generate refresh token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	for _, stored := range []model.UserToken{
		{UserID: user.ID, Token: access, TokenType: model.TokenTypeAccess, IsValid: true, ExpiredAt: accessExp},
		{UserID: user.ID, Token: refresh, TokenType: model.TokenTypeRefresh, IsValid: true, ExpiredAt: refreshExp},
	} {
		if err := h.tokens.Create(ctx, &stored); err != nil {
			log.Error("Failed to store token", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
		}
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.Any("tenant_id", user.TenantID),
		zap.Bool("is_super_admin", user.IsSuperAdmin))

	return c.JSON(http.StatusOK, echo.Map{
		"token":         access,
		"refresh_token": refresh,
		"expires_at":    accessExp.Format(time.RFC3339),
		"user": echo.Map{
			"id":             user.ID,
			"username":       user.Username,
			"email":          user.Email,
			"tenant_id":      user.TenantID,
			"is_admin":       user.IsAdmin,
			"is_super_admin": user.IsSuperAdmin,
		},
	})
}

// RefreshRequest carries the refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh exchanges a valid refresh token for a new access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	log := logger.FromContext(c)

	var req RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
	}

	ctx := c.Request().Context()

	claims, err := jwtutil.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != "refresh" {
		log.Warn("Invalid refresh token", zap.Error(err))
		prometheus.RecordAuthError("invalid_refresh_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired refresh token"})
	}

	// The token must also still be on record and unrevoked.
	if _, err := h.tokens.FindValid(ctx, req.RefreshToken, model.TokenTypeRefresh); err != nil {
		log.Warn("Refresh token revoked or unknown", zap.Uint("user_id", claims.UserID))
		prometheus.RecordAuthError("refresh_token_revoked")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired refresh token"})
	}

	access, accessExp, err := jwtutil.GenerateAccessToken(claims.Email, claims.UserID, claims.TenantID, claims.TenantName, claims.Role, claims.IsSuperAdmin)
	if err != nil {
		log.Error("Failed to generate access token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	stored := model.UserToken{
		UserID:    claims.UserID,
		Token:     access,
		TokenType: model.TokenTypeAccess,
		IsValid:   true,
		ExpiredAt: accessExp,
	}
	if err := h.tokens.Create(ctx, &stored); err != nil {
		log.Error("Failed to store token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":      access,
		"expires_at": accessExp.Format(time.RFC3339),
	})
}

// Logout revokes every live token of the authenticated user.
func (h *AuthHandler) Logout(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	if err := h.tokens.RevokeAllForUser(c.Request().Context(), userID); err != nil {
		return writeError(c, log, err)
	}

	log.Info("User logged out", zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
