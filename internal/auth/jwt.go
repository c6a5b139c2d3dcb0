package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
)

const issuer = "skycrm"

// Claims defines the structured data we store in the JWT
type Claims struct {
	UserID   uuid.UUID   `json:"userId"`
	TenantID uuid.UUID   `json:"tenantId"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the claims as a domain identity.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{UserID: c.UserID, TenantID: c.TenantID, Role: c.Role}
}

type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secretKey: []byte(secret), ttl: ttl}
}

// GenerateToken creates a signed access token for identity.
func (tm *TokenManager) GenerateToken(identity domain.Identity) (string, error) {
	if err := identity.Validate(); err != nil {
		return "", err
	}

	now := time.Now()
	claims := &Claims{
		UserID:   identity.UserID,
		TenantID: identity.TenantID,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   identity.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secretKey)
}

// ValidateToken parses and validates the token string
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return tm.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// Verify validates a token and returns the identity it carries. Every failure,
// including a well-signed token with missing claims, is reported as
// ErrAuthentication wrapping the cause.
func (tm *TokenManager) Verify(tokenString string) (domain.Identity, error) {
	if tokenString == "" {
		return domain.Identity{}, apperrors.ErrMissingCredential
	}

	claims, err := tm.ValidateToken(tokenString)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", apperrors.ErrAuthentication, err)
	}

	identity := claims.Identity()
	if err := identity.Validate(); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", apperrors.ErrAuthentication, err)
	}
	return identity, nil
}
