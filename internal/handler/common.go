// Package handler implements the HTTP handlers for the blog API.
// Handlers depend on small store interfaces satisfied by the repository
// types, bind and minimally validate request bodies, call the shared
// authorization policy before any mutation, and translate every failure
// into one of the fixed {code, message} response kinds.  Raw internal
// errors are logged through the echo context logger and never echoed to
// clients.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"github.com/classless/blog-api/internal/auth"
	"github.com/classless/blog-api/internal/model"
	"github.com/classless/blog-api/internal/queue"
)

// identityKey matches the context key the JWTAuth middleware writes.
const identityKey = "identity"

// sanitizer strips dangerous HTML from user-supplied blog and comment
// content before it is persisted.
var sanitizer = bluemonday.UGCPolicy()

// UserStore is the slice of the user repository the handlers consume.
type UserStore interface {
	Create(ctx context.Context, username, email, password, role string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, error)
	Update(ctx context.Context, u model.User, newPassword string, cost int) error
	Delete(ctx context.Context, id uint64) error
}

// TokenStore persists issued refresh tokens; row existence is validity.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string) error
	Exists(ctx context.Context, tokenHash string) (bool, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// BlogStore is the slice of the blog repository the handlers consume.
type BlogStore interface {
	Create(ctx context.Context, b model.Blog) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Blog, error)
	GetBySlug(ctx context.Context, slug string) (model.Blog, error)
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]model.Blog, error)
	ListByAuthor(ctx context.Context, authorID uint64, publishedOnly bool, limit, offset int) ([]model.Blog, error)
	Update(ctx context.Context, b model.Blog) error
	Delete(ctx context.Context, id uint64) error
	AdjustCounters(ctx context.Context, id uint64, likesDelta, commentsDelta int) error
}

type CommentStore interface {
	Create(ctx context.Context, c model.Comment) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Comment, error)
	ListByBlog(ctx context.Context, blogID uint64) ([]model.Comment, error)
	Delete(ctx context.Context, id uint64) error
}

type LikeStore interface {
	Create(ctx context.Context, blogID, userID uint64) error
	Find(ctx context.Context, blogID, userID uint64) (model.Like, error)
	Delete(ctx context.Context, id uint64) error
}

// EventPublisher emits best-effort activity events.  A nil publisher
// disables events entirely; publish failures never fail the request.
type EventPublisher interface {
	BlogPublished(ctx context.Context, ev queue.BlogPublishedEvent) error
	CommentCreated(ctx context.Context, ev queue.CommentCreatedEvent) error
}

// getIdentity extracts the authenticated identity placed in the context
// by the JWTAuth middleware.
func getIdentity(c echo.Context) (auth.Identity, error) {
	if ident, ok := c.Get(identityKey).(auth.Identity); ok && ident.UserID != 0 {
		return ident, nil
	}
	return auth.Identity{}, errors.New("no identity in context")
}

// errJSON writes one of the fixed error bodies.
func errJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{"code": code, "message": message})
}

// serverError logs the underlying failure with context and answers the
// generic sanitized 500 body.
func serverError(c echo.Context, action string, err error) error {
	c.Logger().Errorf("%s: %v", action, err)
	return errJSON(c, http.StatusInternalServerError, "ServerError", "Internal server error")
}

// forbidden is the uniform ownership/role denial.
func forbidden(c echo.Context) error {
	return errJSON(c, http.StatusForbidden, "AuthorizationError", "Access denied, insufficient permissions")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// pageParams reads limit/offset query parameters with sane bounds.
func pageParams(c echo.Context) (limit, offset int) {
	limit = 20
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 50 {
		limit = 50
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
