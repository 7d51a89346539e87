package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// LikeHandler implements liking and unliking blogs.  A user may hold at
// most one like per blog; the store's unique index is the authority and
// the pre-checks exist to give clients precise errors.
type LikeHandler struct {
	Blogs BlogStore
	Likes LikeStore
}

func NewLikeHandler(blogs BlogStore, likes LikeStore) *LikeHandler {
	return &LikeHandler{Blogs: blogs, Likes: likes}
}

// Like records a like and bumps the blog's like counter atomically.
func (h *LikeHandler) Like(c echo.Context) error {
	ident, err := getIdentity(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Access denied, no token provided")
	}
	blogID, err := pathID(c, "blogId")
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid blog ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Blogs.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusNotFound, "NotFound", "Blog not found")
		}
		return serverError(c, "like: load blog", err)
	}

	if _, err := h.Likes.Find(ctx, blogID, ident.UserID); err == nil {
		return errJSON(c, http.StatusBadRequest, "BadRequest", "You have already liked this blog")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return serverError(c, "like: lookup", err)
	}

	if err := h.Likes.Create(ctx, blogID, ident.UserID); err != nil {
		// the unique index catches a like racing this one
		return errJSON(c, http.StatusBadRequest, "BadRequest", "You have already liked this blog")
	}
	if err := h.Blogs.AdjustCounters(ctx, blogID, 1, 0); err != nil {
		c.Logger().Warnf("like: bump counter blog=%d: %v", blogID, err)
	}

	// Report the stored count, not the pre-insert read: concurrent
	// likes may have landed between the read and the bump.
	count := b.LikesCount + 1
	if fresh, err := h.Blogs.GetByID(ctx, blogID); err == nil {
		count = fresh.LikesCount
	}

	c.Logger().Infof("blog liked: blog=%d user=%d", blogID, ident.UserID)
	return c.JSON(http.StatusOK, echo.Map{"likesCount": count})
}

// Unlike removes the caller's like.  Without an existing like the blog
// is untouched and the client gets a not-found.
func (h *LikeHandler) Unlike(c echo.Context) error {
	ident, err := getIdentity(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Access denied, no token provided")
	}
	blogID, err := pathID(c, "blogId")
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid blog ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	like, err := h.Likes.Find(ctx, blogID, ident.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusNotFound, "NotFound", "Like not found")
		}
		return serverError(c, "unlike: lookup", err)
	}

	if err := h.Likes.Delete(ctx, like.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// a concurrent unlike won; nothing left to decrement
			return errJSON(c, http.StatusNotFound, "NotFound", "Like not found")
		}
		return serverError(c, "unlike: delete", err)
	}
	if err := h.Blogs.AdjustCounters(ctx, blogID, -1, 0); err != nil {
		c.Logger().Warnf("unlike: drop counter blog=%d: %v", blogID, err)
	}

	c.Logger().Infof("blog unliked: blog=%d user=%d", blogID, ident.UserID)
	return c.NoContent(http.StatusNoContent)
}
