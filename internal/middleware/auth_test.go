package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fx0883/productsShow/internal/tenantctx"
	"github.com/fx0883/productsShow/pkg/config"
	"github.com/fx0883/productsShow/pkg/jwtutil"
	"github.com/fx0883/productsShow/prometheus"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "middleware_test"}})
	jwtutil.Initialize(&config.JWTConfig{
		SigningKey:             "middleware-test-key",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
	})
	os.Exit(m.Run())
}

func invoke(t *testing.T, authHeader string, next echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("logger", zap.NewNop())
	err := AuthMiddleware(next)(c)
	return rec, err
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec, err := invoke(t, "", okHandler)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_NotBearer(t *testing.T) {
	rec, err := invoke(t, "Basic dXNlcjpwYXNz", okHandler)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	rec, err := invoke(t, "Bearer not-a-jwt", okHandler)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	tenantID := uint(1)
	refresh, _, err := jwtutil.GenerateRefreshToken("a@b.test", 1, &tenantID, "acme", "member", false)
	require.NoError(t, err)

	rec, err := invoke(t, "Bearer "+refresh, okHandler)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// A tenant-bound token puts the tenant on the request's context.Context so
// repositories downstream scope every query to it.
func TestAuthMiddleware_BindsTenant(t *testing.T) {
	tenantID := uint(42)
	token, _, err := jwtutil.GenerateAccessToken("a@b.test", 7, &tenantID, "acme", "admin", false)
	require.NoError(t, err)

	var sawTenant uint
	var bound bool
	rec, err := invoke(t, "Bearer "+token, func(c echo.Context) error {
		sawTenant, bound = tenantctx.TenantID(c.Request().Context())
		assert.Equal(t, uint(7), c.Get("user_id"))
		assert.Equal(t, "admin", c.Get("user_role"))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, bound)
	assert.Equal(t, uint(42), sawTenant)
}

// A super-admin token leaves the context unbound: the cross-tenant view.
func TestAuthMiddleware_SuperAdminUnbound(t *testing.T) {
	token, _, err := jwtutil.GenerateAccessToken("root@b.test", 1, nil, "", "super_admin", true)
	require.NoError(t, err)

	var bound bool
	rec, err := invoke(t, "Bearer "+token, func(c echo.Context) error {
		_, bound = tenantctx.TenantID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, bound)
}

// A token with neither a tenant nor the super-admin flag identifies nobody's
// data and is refused outright.
func TestAuthMiddleware_UnboundNonAdminRejected(t *testing.T) {
	token, _, err := jwtutil.GenerateAccessToken("a@b.test", 7, nil, "", "member", false)
	require.NoError(t, err)

	rec, err := invoke(t, "Bearer "+token, okHandler)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()

	run := func(role string, super bool) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("logger", zap.NewNop())
		c.Set("user_role", role)
		c.Set("is_super_admin", super)
		require.NoError(t, RequireAdmin(okHandler)(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("admin", false))
	assert.Equal(t, http.StatusOK, run("member", true))
	assert.Equal(t, http.StatusForbidden, run("member", false))
}

func TestRequireSuperAdmin(t *testing.T) {
	e := echo.New()

	run := func(super bool) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("logger", zap.NewNop())
		c.Set("is_super_admin", super)
		require.NoError(t, RequireSuperAdmin(okHandler)(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run(true))
	assert.Equal(t, http.StatusForbidden, run(false))
}
