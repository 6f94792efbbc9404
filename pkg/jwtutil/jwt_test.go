package jwtutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fx0883/productsShow/pkg/config"
)

func initTestKeys(t *testing.T) {
	t.Helper()
	Initialize(&config.JWTConfig{
		SigningKey:             "test-signing-key",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	initTestKeys(t)

	tenantID := uint(5)
	token, expiresAt, err := GenerateAccessToken("user@example.com", 12, &tenantID, "acme", "admin", false)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, uint(12), claims.UserID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, uint(5), *claims.TenantID)
	assert.Equal(t, "acme", claims.TenantName)
	assert.Equal(t, "admin", claims.Role)
	assert.False(t, claims.IsSuperAdmin)
	assert.Equal(t, "access", claims.TokenType)
}

func TestGenerateRefreshToken_Type(t *testing.T) {
	initTestKeys(t)

	token, _, err := GenerateRefreshToken("user@example.com", 12, nil, "", "member", false)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.TokenType)
}

// A super-admin token carries no tenant claim at all.
func TestSuperAdminToken_NoTenant(t *testing.T) {
	initTestKeys(t)

	token, _, err := GenerateAccessToken("root@example.com", 1, nil, "", "super_admin", true)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.TenantID)
	assert.True(t, claims.IsSuperAdmin)
}

func TestValidateToken_WrongKey(t *testing.T) {
	initTestKeys(t)
	token, _, err := GenerateAccessToken("user@example.com", 12, nil, "", "member", false)
	require.NoError(t, err)

	Initialize(&config.JWTConfig{
		SigningKey:             "a-different-key",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
	})

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	Initialize(&config.JWTConfig{
		SigningKey:             "test-signing-key",
		AccessTokenExpiration:  -time.Minute,
		RefreshTokenExpiration: time.Hour,
	})

	token, _, err := GenerateAccessToken("user@example.com", 12, nil, "", "member", false)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	initTestKeys(t)

	_, err := ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
