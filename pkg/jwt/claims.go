package jwt

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token scopes
const (
	ScopeRecordingsWrite = "recordings:write"
	ScopeRecordingsRead  = "recordings:read"
)

// Claims represents JWT custom claims of a service token
type Claims struct {
	TokenID uuid.UUID `json:"token_id"`
	Service string    `json:"service"`
	Scopes  []string  `json:"scopes"`
	jwt.RegisteredClaims
}

// HasScope reports whether the token grants scope
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}
