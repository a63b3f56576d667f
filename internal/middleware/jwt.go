// Package middleware provides the request guards shared by the API:
// bearer-token authentication and Redis-backed rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/frotalog/fleet-api/internal/auth"
)

// UserIDKey is the context key under which the authenticated user id is
// stored for downstream handlers.
const UserIDKey = "user_id"

// Protect returns middleware that requires a valid access token in the
// Authorization header. A missing header and an invalid, expired or
// refresh-typed token are reported uniformly so the caller learns nothing
// about why the token was rejected.
func Protect(tokens *auth.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": "not authenticated",
				})
			}
			claims := tokens.Verify(raw)
			if claims == nil || claims.IsRefresh() {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": "invalid or expired token",
				})
			}
			c.Set(UserIDKey, claims.UserID)
			return next(c)
		}
	}
}

// OptionalAuth attaches the user id when a valid access token is present
// but never fails the request. The rate limiter uses the attached id to
// key buckets per user instead of per client address.
func OptionalAuth(tokens *auth.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearerToken(c); ok {
				if claims := tokens.Verify(raw); claims != nil && !claims.IsRefresh() {
					c.Set(UserIDKey, claims.UserID)
				}
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}
