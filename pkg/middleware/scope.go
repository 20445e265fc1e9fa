package middleware

import (
	"github.com/labstack/echo/v4"

	appErrors "github.com/johnquangdev/capture-stitcher/errors"
	authMiddleware "github.com/johnquangdev/capture-stitcher/internal/infrastructure/http/middleware"
)

// RequireScope middleware: only allow tokens that grant scope
func RequireScope(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := authMiddleware.GetClaims(c)
			if !ok {
				return appErrors.ErrUnauthenticated()
			}
			if !claims.HasScope(scope) {
				return appErrors.ErrPermissionDenied(scope)
			}
			return next(c)
		}
	}
}
