package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/classless/blog-api/internal/config"
	"github.com/classless/blog-api/internal/repository"
)

// UserHandler implements the user profile and admin user-management
// endpoints.  Admin-only routes are gated by RequireRole at the router;
// the handlers themselves only deal with the current identity.
type UserHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewUserHandler(cfg config.Config, u UserStore, t TokenStore) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Tokens: t}
}

type updateUserReq struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Website   string `json:"website"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	X         string `json:"x"`
	YouTube   string `json:"youtube"`
}

// Current returns the authenticated user's profile.
func (h *UserHandler) Current(c echo.Context) error {
	ident, err := getIdentity(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Access denied, no token provided")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusNotFound, "NotFound", "User not found")
		}
		return serverError(c, "get current user", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": newUserView(u)})
}

// UpdateCurrent mutates profile fields of the authenticated user.  The
// password is re-hashed only when a new one is supplied; other fields
// are applied when non-empty.
func (h *UserHandler) UpdateCurrent(c echo.Context) error {
	ident, err := getIdentity(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Access denied, no token provided")
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusNotFound, "NotFound", "User not found")
		}
		return serverError(c, "update user: load", err)
	}

	if v := strings.TrimSpace(req.Username); v != "" {
		u.Username = v
	}
	if v := strings.TrimSpace(req.Email); v != "" {
		u.Email = v
	}
	if v := strings.TrimSpace(req.FirstName); v != "" {
		u.FirstName = sql.NullString{String: v, Valid: true}
	}
	if v := strings.TrimSpace(req.LastName); v != "" {
		u.LastName = sql.NullString{String: v, Valid: true}
	}
	applyLink(&u.SocialLinks.Website, req.Website)
	applyLink(&u.SocialLinks.Facebook, req.Facebook)
	applyLink(&u.SocialLinks.Instagram, req.Instagram)
	applyLink(&u.SocialLinks.X, req.X)
	applyLink(&u.SocialLinks.YouTube, req.YouTube)

	if err := h.Users.Update(ctx, u, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return errJSON(c, http.StatusBadRequest, "ValidationError", "Email already in use")
		}
		if errors.Is(err, repository.ErrUsernameExists) {
			return errJSON(c, http.StatusBadRequest, "ValidationError", "Username already in use")
		}
		return serverError(c, "update user: save", err)
	}

	u, err = h.Users.GetByID(ctx, ident.UserID)
	if err != nil {
		return serverError(c, "update user: reload", err)
	}
	c.Logger().Infof("user updated: id=%d", u.ID)
	return c.JSON(http.StatusOK, echo.Map{"user": newUserView(u)})
}

// DeleteCurrent removes the authenticated user's account and ends all
// of their sessions by deleting every stored refresh token.
func (h *UserHandler) DeleteCurrent(c echo.Context) error {
	ident, err := getIdentity(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Access denied, no token provided")
	}
	return h.deleteUser(c, ident.UserID)
}

// List returns users, newest first.  Admin-only at the router.
func (h *UserHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, limit, offset)
	if err != nil {
		return serverError(c, "list users", err)
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, newUserView(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out, "limit": limit, "offset": offset})
}

// Get returns one user by id.  Admin-only at the router.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "userId")
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid user ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusNotFound, "NotFound", "User not found")
		}
		return serverError(c, "get user", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": newUserView(u)})
}

// Delete removes a user by id.  Admin-only at the router.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "userId")
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid user ID")
	}
	return h.deleteUser(c, id)
}

func (h *UserHandler) deleteUser(c echo.Context, id uint64) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusNotFound, "NotFound", "User not found")
		}
		return serverError(c, "delete user", err)
	}
	if err := h.Tokens.DeleteAllForUser(ctx, id); err != nil {
		// account is gone; orphaned tokens are unusable, log and move on
		c.Logger().Warnf("delete user: revoke tokens: %v", err)
	}
	c.Logger().Infof("user deleted: id=%d", id)
	return c.NoContent(http.StatusNoContent)
}

func applyLink(dst *sql.NullString, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = sql.NullString{String: v, Valid: true}
	}
}
