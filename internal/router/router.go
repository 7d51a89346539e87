package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/classless/blog-api/internal/handler"
	"github.com/classless/blog-api/internal/middleware"
	"github.com/classless/blog-api/internal/model"
)

// RegisterRoutes registers routes that require no authentication: the
// health check for load balancers and the API root banner.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/api/v1", handler.Root)
}

// RegisterAuth registers the authentication endpoints under
// /api/v1/auth.  None of them sit behind the JWT gate: register and
// login create sessions, and refresh/logout authenticate through the
// refresh cookie alone.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/api/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh-token", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterUsers registers the user profile and admin user-management
// endpoints.  Everything requires a valid access token; the collection
// routes additionally require the admin role.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, jwtSecret string) {
	g := e.Group("/api/v1/users", middleware.JWTAuth(jwtSecret))
	g.GET("/current", h.Current)
	g.PUT("/current", h.UpdateCurrent)
	g.DELETE("/current", h.DeleteCurrent)

	admin := middleware.RequireRole(model.RoleAdmin)
	g.GET("", h.List, admin)
	g.GET("/:userId", h.Get, admin)
	g.DELETE("/:userId", h.Delete, admin)
}

// RegisterBlogs registers blog, comment and like endpoints.  All sit
// behind the JWT gate; blog creation is role-gated to admins and the
// read endpoints are fronted by the response cache when one is
// configured.  Ownership checks for update/delete happen inside the
// handlers through the shared policy.
func RegisterBlogs(e *echo.Echo, b *handler.BlogHandler, cm *handler.CommentHandler, l *handler.LikeHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	if cache == nil {
		cache = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	blogs := e.Group("/api/v1/blogs", middleware.JWTAuth(jwtSecret))
	blogs.POST("", b.Create, middleware.RequireRole(model.RoleAdmin))
	blogs.GET("", b.List, cache)
	blogs.GET("/user/:userId", b.ListByAuthor, cache)
	blogs.GET("/:slug", b.GetBySlug, cache)
	blogs.PUT("/:blogId", b.Update)
	blogs.DELETE("/:blogId", b.Delete)

	comments := e.Group("/api/v1/comments", middleware.JWTAuth(jwtSecret))
	comments.POST("/blog/:blogId", cm.Create)
	comments.GET("/blog/:blogId", cm.List)
	comments.DELETE("/:commentId", cm.Delete)

	likes := e.Group("/api/v1/likes", middleware.JWTAuth(jwtSecret))
	likes.POST("/blog/:blogId", l.Like)
	likes.DELETE("/blog/:blogId", l.Unlike)
}
