package middleware // middleware contains reusable HTTP middleware functions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/classless/blog-api/internal/auth"
	"github.com/classless/blog-api/internal/utils"
)

// identityKey is the echo context key under which the authenticated
// identity is stored.  Handlers read it back through their getIdentity
// helper; the rate limiter uses it to key buckets per user.
const identityKey = "identity"

// JWTAuth returns an Echo middleware that gates every protected request:
// it validates the Bearer access token and injects the resolved identity
// into the request context.  The gate is terminal: a missing, expired or
// invalid credential rejects the request before any role check, ownership
// check or handler runs.  Expired and invalid tokens are reported
// distinctly because the client remediation differs (refresh or re-login
// vs. fixing the credential).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"code":    "AuthorizationError",
					"message": "Access denied, no token provided",
				})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			userID, role, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, echo.Map{
						"code":    "AuthorizationError",
						"message": "Access token expired, request a new one with refresh token",
					})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"code":    "AuthorizationError",
					"message": "Invalid access token",
				})
			}

			c.Set(identityKey, auth.Identity{UserID: userID, Role: role})
			return next(c)
		}
	}
}
