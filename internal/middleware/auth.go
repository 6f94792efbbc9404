package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fx0883/productsShow/internal/tenantctx"
	"github.com/fx0883/productsShow/pkg/jwtutil"
	"github.com/fx0883/productsShow/pkg/logger"
)

// AuthMiddleware validates the JWT token and binds the caller's tenant into
// the request context. A super-admin token leaves the context unbound, which
// makes every tenant visible downstream. The binding lives on the request's
// context.Context, so it is released with the request no matter how the
// handler exits.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		if claims.TokenType != "access" {
			log.Warn("Non-access token presented for authentication")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Set("is_super_admin", claims.IsSuperAdmin)

		ctx := tenantctx.WithUser(c.Request().Context(), claims.UserID)

		if claims.IsSuperAdmin {
			// Super admins operate with no tenant bound: unrestricted reads.
			log.Info("Request authenticated as super admin",
				zap.Uint("user_id", claims.UserID))
		} else if claims.TenantID != nil {
			c.Set("tenant_id", *claims.TenantID)
			c.Set("tenant_name", claims.TenantName)
			ctx = tenantctx.WithTenant(ctx, *claims.TenantID)
			log.Info("Request authenticated with tenant context",
				zap.Uint("tenant_id", *claims.TenantID),
				zap.String("tenant_name", claims.TenantName),
				zap.String("role", claims.Role))
		} else {
			log.Warn("JWT token carries neither tenant_id nor super admin flag")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "token is not bound to a tenant"})
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequireAdmin allows only tenant admins and super admins through.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if isSuper, _ := c.Get("is_super_admin").(bool); isSuper {
			return next(c)
		}
		if role, _ := c.Get("user_role").(string); role == "admin" {
			return next(c)
		}

		logger.FromContext(c).Warn("Admin privilege required")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin privilege required"})
	}
}

// RequireSuperAdmin allows only tenant-less super admins through.
func RequireSuperAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if isSuper, _ := c.Get("is_super_admin").(bool); isSuper {
			return next(c)
		}

		logger.FromContext(c).Warn("Super admin privilege required")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "super admin privilege required"})
	}
}

// GetTenantIDFromContext retrieves the tenant ID from the context.
// Returns 0, false if tenant ID is not found
func GetTenantIDFromContext(c echo.Context) (uint, bool) {
	tenantID, ok := c.Get("tenant_id").(uint)
	return tenantID, ok
}
