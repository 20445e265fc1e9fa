package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenExpired is returned for well formed tokens past their expiry
var ErrTokenExpired = errors.New("token expired")

// Manager handles JWT operations
type Manager struct {
	secret string
	expiry time.Duration
	issuer string
}

// NewManager creates a new JWT manager
func NewManager(secret, issuer string, expiry time.Duration) *Manager {
	return &Manager{
		secret: secret,
		expiry: expiry,
		issuer: issuer,
	}
}

// GenerateServiceToken issues a token for a calling service
func (m *Manager) GenerateServiceToken(service string, scopes []string) (string, error) {
	if service == "" {
		return "", fmt.Errorf("service name is empty")
	}

	now := time.Now()
	tokenID := uuid.New()
	claims := &Claims{
		TokenID: tokenID,
		Service: service,
		Scopes:  scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   service,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

// ValidateToken validates and parses a service token
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	}, jwt.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// GetExpiry returns token expiry duration
func (m *Manager) GetExpiry() time.Duration {
	return m.expiry
}
