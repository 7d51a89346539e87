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
	"github.com/classless/blog-api/internal/utils"
)

// BlogHandler implements the blog CRUD endpoints.  Creation is gated to
// admins at the router; update and delete apply the shared
// ownership-or-admin policy.
type BlogHandler struct {
	Blogs  BlogStore
	Events EventPublisher
}

func NewBlogHandler(blogs BlogStore, events EventPublisher) *BlogHandler {
	return &BlogHandler{Blogs: blogs, Events: events}
}

type blogReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Banner  string `json:"banner"`
	Status  string `json:"status"`
}

// Create makes a new blog post for the authenticated admin.  Content is
// sanitized before persistence and the slug is derived from the title
// with a random suffix so duplicate titles stay unique.
func (h *BlogHandler) Create(c echo.Context) error {
	ident, err := getIdentity(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Access denied, no token provided")
	}
	var req blogReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Content) == "" {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Title and content are required")
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		status = model.BlogDraft
	}
	if status != model.BlogDraft && status != model.BlogPublished {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Status must be one of draft or published")
	}

	b := model.Blog{
		AuthorID: ident.UserID,
		Title:    req.Title,
		Slug:     utils.GenSlug(req.Title),
		Content:  sanitizer.Sanitize(req.Content),
		Status:   status,
	}
	if v := strings.TrimSpace(req.Banner); v != "" {
		b.BannerURL = sql.NullString{String: v, Valid: true}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Blogs.Create(ctx, b)
	if err != nil {
		return serverError(c, "create blog", err)
	}
	b, err = h.Blogs.GetByID(ctx, id)
	if err != nil {
		return serverError(c, "create blog: reload", err)
	}

	c.Logger().Infof("blog created: id=%d author=%d status=%s", b.ID, b.AuthorID, b.Status)
	if b.Status == model.BlogPublished {
		h.publishEvent(c, b)
	}
	return c.JSON(http.StatusCreated, echo.Map{"blog": newBlogView(b)})
}

// List returns blogs newest first.  Regular users see published posts
// only; admins also see drafts.
func (h *BlogHandler) List(c echo.Context) error {
	ident, err := getIdentity(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Access denied, no token provided")
	}
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	blogs, err := h.Blogs.List(ctx, ident.Role != model.RoleAdmin, limit, offset)
	if err != nil {
		return serverError(c, "list blogs", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"blogs": newBlogViews(blogs), "limit": limit, "offset": offset})
}

// ListByAuthor returns one author's blogs.  Drafts are visible to
// admins and to the author themself.
func (h *BlogHandler) ListByAuthor(c echo.Context) error {
	ident, err := getIdentity(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Access denied, no token provided")
	}
	authorID, err := pathID(c, "userId")
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid user ID")
	}
	limit, offset := pageParams(c)

	publishedOnly := ident.Role != model.RoleAdmin && ident.UserID != authorID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	blogs, err := h.Blogs.ListByAuthor(ctx, authorID, publishedOnly, limit, offset)
	if err != nil {
		return serverError(c, "list blogs by author", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"blogs": newBlogViews(blogs), "limit": limit, "offset": offset})
}

// GetBySlug returns a single blog.  A draft is shown only to admins and
// its author; everyone else gets the uniform authorization denial, which
// reveals nothing beyond the not-found check that already ran.
func (h *BlogHandler) GetBySlug(c echo.Context) error {
	ident, err := getIdentity(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Access denied, no token provided")
	}
	slug := c.Param("slug")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Blogs.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusNotFound, "NotFound", "Blog not found")
		}
		return serverError(c, "get blog by slug", err)
	}
	if b.Status == model.BlogDraft {
		if err := auth.Authorize(ident, b.AuthorID); err != nil {
			c.Logger().Warnf("draft access denied: user=%d blog=%d", ident.UserID, b.ID)
			return forbidden(c)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"blog": newBlogView(b)})
}

// Update mutates a blog's fields.  Ownership-gated: only the author or
// an admin may update.
func (h *BlogHandler) Update(c echo.Context) error {
	ident, err := getIdentity(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Access denied, no token provided")
	}
	blogID, err := pathID(c, "blogId")
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid blog ID")
	}
	var req blogReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Blogs.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusNotFound, "NotFound", "Blog not found")
		}
		return serverError(c, "update blog: load", err)
	}
	if err := auth.Authorize(ident, b.AuthorID); err != nil {
		c.Logger().Warnf("blog update denied: user=%d blog=%d", ident.UserID, b.ID)
		return forbidden(c)
	}

	wasPublished := b.Status == model.BlogPublished
	if v := strings.TrimSpace(req.Title); v != "" {
		b.Title = v
	}
	if v := strings.TrimSpace(req.Content); v != "" {
		b.Content = sanitizer.Sanitize(v)
	}
	if v := strings.TrimSpace(req.Banner); v != "" {
		b.BannerURL = sql.NullString{String: v, Valid: true}
	}
	if v := strings.ToLower(strings.TrimSpace(req.Status)); v != "" {
		if v != model.BlogDraft && v != model.BlogPublished {
			return errJSON(c, http.StatusBadRequest, "ValidationError", "Status must be one of draft or published")
		}
		b.Status = v
	}

	if err := h.Blogs.Update(ctx, b); err != nil {
		return serverError(c, "update blog: save", err)
	}
	b, err = h.Blogs.GetByID(ctx, blogID)
	if err != nil {
		return serverError(c, "update blog: reload", err)
	}

	c.Logger().Infof("blog updated: id=%d", b.ID)
	if !wasPublished && b.Status == model.BlogPublished {
		h.publishEvent(c, b)
	}
	return c.JSON(http.StatusOK, echo.Map{"blog": newBlogView(b)})
}

// Delete removes a blog and its dependents.  Ownership-gated.
func (h *BlogHandler) Delete(c echo.Context) error {
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
		return serverError(c, "delete blog: load", err)
	}
	if err := auth.Authorize(ident, b.AuthorID); err != nil {
		c.Logger().Warnf("blog delete denied: user=%d blog=%d", ident.UserID, b.ID)
		return forbidden(c)
	}

	if err := h.Blogs.Delete(ctx, blogID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// deleted concurrently; the outcome the client asked for
			return c.NoContent(http.StatusNoContent)
		}
		return serverError(c, "delete blog", err)
	}
	c.Logger().Infof("blog deleted: id=%d", blogID)
	return c.NoContent(http.StatusNoContent)
}

func (h *BlogHandler) publishEvent(c echo.Context, b model.Blog) {
	if h.Events == nil {
		return
	}
	ev := queue.BlogPublishedEvent{
		BlogID:      b.ID,
		AuthorID:    b.AuthorID,
		Title:       b.Title,
		Slug:        b.Slug,
		PublishedAt: time.Now().UTC(),
	}
	if err := h.Events.BlogPublished(c.Request().Context(), ev); err != nil {
		c.Logger().Warnf("publish blog event: %v", err)
	}
}
