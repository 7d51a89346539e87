package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/classless/blog-api/internal/auth"
)

// RequireRole returns a middleware that enforces that the authenticated
// user holds one of the specified roles.  It assumes JWTAuth ran earlier
// and stored the identity in the context.  The decision is delegated to
// the same auth.Authorize policy function the handlers use for
// ownership checks, so role gating and ownership gating cannot diverge.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := c.Get(identityKey).(auth.Identity)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"code":    "AuthorizationError",
					"message": "Access denied, no token provided",
				})
			}
			if err := auth.Authorize(ident, 0, roles...); err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{
					"code":    "AuthorizationError",
					"message": "Access denied, insufficient permissions",
				})
			}
			return next(c)
		}
	}
}
