package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/classless/blog-api/internal/auth"
	"github.com/classless/blog-api/internal/model"
	"github.com/classless/blog-api/internal/queue"
)

// CommentHandler implements commenting on blogs.  Deleting a comment is
// ownership-gated through the same policy as blog mutations.
type CommentHandler struct {
	Blogs    BlogStore
	Comments CommentStore
	Events   EventPublisher
}

func NewCommentHandler(blogs BlogStore, comments CommentStore, events EventPublisher) *CommentHandler {
	return &CommentHandler{Blogs: blogs, Comments: comments, Events: events}
}

type commentReq struct {
	Content string `json:"content"`
}

// Create adds a comment to a blog and bumps its comment counter with an
// atomic delta.
func (h *CommentHandler) Create(c echo.Context) error {
	ident, err := getIdentity(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Access denied, no token provided")
	}
	blogID, err := pathID(c, "blogId")
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid blog ID")
	}
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Content is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Blogs.GetByID(ctx, blogID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusNotFound, "NotFound", "Blog not found")
		}
		return serverError(c, "comment: load blog", err)
	}

	cm := model.Comment{
		BlogID:  blogID,
		UserID:  ident.UserID,
		Content: sanitizer.Sanitize(req.Content),
	}
	id, err := h.Comments.Create(ctx, cm)
	if err != nil {
		return serverError(c, "comment: create", err)
	}
	cm, err = h.Comments.GetByID(ctx, id)
	if err != nil {
		return serverError(c, "comment: reload", err)
	}

	// The comment is the durable fact; a counter bump that loses the
	// race against a concurrent blog delete is a soft no-op.
	if err := h.Blogs.AdjustCounters(ctx, blogID, 0, 1); err != nil {
		c.Logger().Warnf("comment: bump counter blog=%d: %v", blogID, err)
	}

	c.Logger().Infof("comment created: id=%d blog=%d user=%d", cm.ID, blogID, ident.UserID)
	if h.Events != nil {
		ev := queue.CommentCreatedEvent{CommentID: cm.ID, BlogID: blogID, UserID: ident.UserID, CreatedAt: cm.CreatedAt}
		if err := h.Events.CommentCreated(c.Request().Context(), ev); err != nil {
			c.Logger().Warnf("publish comment event: %v", err)
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"comment": newCommentView(cm)})
}

// List returns a blog's comments oldest first.
func (h *CommentHandler) List(c echo.Context) error {
	blogID, err := pathID(c, "blogId")
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid blog ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Blogs.GetByID(ctx, blogID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusNotFound, "NotFound", "Blog not found")
		}
		return serverError(c, "list comments: load blog", err)
	}

	comments, err := h.Comments.ListByBlog(ctx, blogID)
	if err != nil {
		return serverError(c, "list comments", err)
	}
	out := make([]commentView, 0, len(comments))
	for _, cm := range comments {
		out = append(out, newCommentView(cm))
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": out})
}

// Delete removes a comment.  Only the commenter or an admin may delete;
// on success the parent blog's comment counter drops by exactly one.
func (h *CommentHandler) Delete(c echo.Context) error {
	ident, err := getIdentity(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Access denied, no token provided")
	}
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid comment ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusNotFound, "NotFound", "Comment not found")
		}
		return serverError(c, "delete comment: load", err)
	}
	if _, err := h.Blogs.GetByID(ctx, cm.BlogID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusNotFound, "NotFound", "Blog not found")
		}
		return serverError(c, "delete comment: load blog", err)
	}

	if err := auth.Authorize(ident, cm.UserID); err != nil {
		c.Logger().Warnf("comment delete denied: user=%d comment=%d", ident.UserID, commentID)
		return forbidden(c)
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// lost the race against another delete; counter already settled
			return c.NoContent(http.StatusNoContent)
		}
		return serverError(c, "delete comment", err)
	}
	if err := h.Blogs.AdjustCounters(ctx, cm.BlogID, 0, -1); err != nil {
		c.Logger().Warnf("delete comment: drop counter blog=%d: %v", cm.BlogID, err)
	}

	c.Logger().Infof("comment deleted: id=%d blog=%d", commentID, cm.BlogID)
	return c.NoContent(http.StatusNoContent)
}
