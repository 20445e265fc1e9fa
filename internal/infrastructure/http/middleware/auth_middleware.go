package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	appErrors "github.com/johnquangdev/capture-stitcher/errors"
	"github.com/johnquangdev/capture-stitcher/pkg/jwt"
)

const (
	// ClaimsContextKey is the echo context key for the validated token claims
	ClaimsContextKey = "claims"
	// ServiceContextKey is the echo context key for the calling service name
	ServiceContextKey = "service"
)

// EchoAuth returns an Echo middleware that validates the bearer service token and
// sets "claims" (*jwt.Claims) and "service" (string) into Echo context
func EchoAuth(manager *jwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				return appErrors.ErrUnauthenticated()
			}

			claims, err := manager.ValidateToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return appErrors.ErrTokenExpired()
				}
				return appErrors.ErrInvalidToken()
			}

			c.Set(ClaimsContextKey, claims)
			c.Set(ServiceContextKey, claims.Service)

			return next(c)
		}
	}
}

// GetClaims retrieves the token claims from the echo context
func GetClaims(c echo.Context) (*jwt.Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*jwt.Claims)
	return claims, ok
}

// Helper functions

func extractToken(authHeader string) string {
	// Expected format: "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}
