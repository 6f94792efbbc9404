package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fx0883/productsShow/pkg/config"
)

var (
	secret        []byte
	accessExpiry  = time.Hour
	refreshExpiry = 7 * 24 * time.Hour
)

// Initialize configures the signing key and token lifetimes.
func Initialize(cfg *config.JWTConfig) {
	secret = []byte(cfg.SigningKey)
	accessExpiry = cfg.AccessTokenExpiration
	refreshExpiry = cfg.RefreshTokenExpiration
}

// UserClaims represents the JWT claims for user authentication. A claim set
// without a tenant_id belongs to a super admin, who operates across tenants.
type UserClaims struct {
	Email        string `json:"email"`
	UserID       uint   `json:"user_id"`
	TenantID     *uint  `json:"tenant_id,omitempty"`
	TenantName   string `json:"tenant_name,omitempty"`
	Role         string `json:"role,omitempty"`
	IsSuperAdmin bool   `json:"is_super_admin,omitempty"`
	TokenType    string `json:"token_type"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates an access JWT carrying user and tenant claims.
func GenerateAccessToken(email string, userID uint, tenantID *uint, tenantName, role string, isSuperAdmin bool) (string, time.Time, error) {
	return generate(email, userID, tenantID, tenantName, role, isSuperAdmin, "access", accessExpiry)
}

// GenerateRefreshToken creates a refresh JWT with a longer lifetime.
func GenerateRefreshToken(email string, userID uint, tenantID *uint, tenantName, role string, isSuperAdmin bool) (string, time.Time, error) {
	return generate(email, userID, tenantID, tenantName, role, isSuperAdmin, "refresh", refreshExpiry)
}

func generate(email string, userID uint, tenantID *uint, tenantName, role string, isSuperAdmin bool, tokenType string, expiry time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(expiry)
	claims := UserClaims{
		Email:        email,
		UserID:       userID,
		TenantID:     tenantID,
		TenantName:   tenantName,
		Role:         role,
		IsSuperAdmin: isSuperAdmin,
		TokenType:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	return signed, expiresAt, err
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
