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
	"github.com/classless/blog-api/internal/model"
	"github.com/classless/blog-api/internal/repository"
	"github.com/classless/blog-api/internal/utils"
)

// refreshCookieName is the cookie the refresh token travels in, both
// directions.  The access token is returned in the response body and is
// never written to a cookie.
const refreshCookieName = "refreshToken"

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // admin | user
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type authResp struct {
	User        userView `json:"user"`
	AccessToken string   `json:"accessToken"`
}

// Register creates a user with a generated username, issues a token
// pair, persists the refresh token and sets the refresh cookie.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Email and password are required")
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != model.RoleAdmin && role != model.RoleUser {
		role = model.RoleUser
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	username := utils.GenUsername()
	uid, err := h.Users.Create(ctx, username, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return errJSON(c, http.StatusBadRequest, "ValidationError", "Email already in use")
		}
		if errors.Is(err, repository.ErrUsernameExists) {
			return errJSON(c, http.StatusBadRequest, "ValidationError", "Username already in use")
		}
		return serverError(c, "register: create user", err)
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return serverError(c, "register: load user", err)
	}

	access, err := h.issueSession(c, ctx, uid, role)
	if err != nil {
		return serverError(c, "register: issue tokens", err)
	}

	c.Logger().Infof("user registered: id=%d role=%s", uid, role)
	return c.JSON(http.StatusCreated, authResp{User: newUserView(u), AccessToken: access})
}

// Login verifies credentials and issues a fresh token pair.  Not-found
// and wrong-password answer identically so the response does not reveal
// which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return errJSON(c, http.StatusBadRequest, "ValidationError", "Email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Invalid email or password")
		}
		return serverError(c, "login: load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Invalid email or password")
	}

	access, err := h.issueSession(c, ctx, u.ID, u.Role)
	if err != nil {
		return serverError(c, "login: issue tokens", err)
	}

	c.Logger().Infof("user logged in: id=%d", u.ID)
	return c.JSON(http.StatusOK, authResp{User: newUserView(u), AccessToken: access})
}

// Refresh exchanges a valid, still-stored refresh token for a new
// access token.  Order matters: the store is consulted first, so a
// logged-out token is rejected regardless of its signature validity.
// The refresh token itself is not rotated; it stays valid until
// logout or its own expiry.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := readRefreshCookie(c)
	if raw == "" {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Invalid refresh token")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	exists, err := h.Tokens.Exists(ctx, utils.HashRefreshRaw(raw))
	if err != nil {
		c.Logger().Errorf("refresh: token lookup: %v", err)
		return errJSON(c, http.StatusInternalServerError, "InternalServerError", "Internal server error")
	}
	if !exists {
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Invalid refresh token")
	}

	uid, err := utils.VerifyRefreshToken(h.Cfg.JWTRefreshSecret, raw)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Refresh token expired, please login again")
		}
		return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Invalid refresh token")
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// account deleted after issuance
			return errJSON(c, http.StatusUnauthorized, "AuthorizationError", "Invalid refresh token")
		}
		c.Logger().Errorf("refresh: load user: %v", err)
		return errJSON(c, http.StatusInternalServerError, "InternalServerError", "Internal server error")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTAccessSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		c.Logger().Errorf("refresh: sign access token: %v", err)
		return errJSON(c, http.StatusInternalServerError, "InternalServerError", "Internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"accessToken": access.Token})
}

// Logout revokes the refresh token carried in the cookie by deleting
// its store row (a missing row is a no-op, so logout is idempotent) and
// clears the cookie unconditionally.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := readRefreshCookie(c)

	if raw != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := h.Tokens.Delete(ctx, utils.HashRefreshRaw(raw)); err != nil {
			return serverError(c, "logout: delete refresh token", err)
		}
		c.Logger().Infof("refresh token revoked")
	}

	h.clearRefreshCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// issueSession mints the access token, mints and persists the refresh
// token and sets the refresh cookie.  Every refresh issuance writes
// exactly one token-store row.
func (h *AuthHandler) issueSession(c echo.Context, ctx context.Context, userID uint64, role string) (string, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTAccessSecret, userID, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return "", err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, userID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return "", err
	}
	if err := h.Tokens.Store(ctx, userID, utils.HashRefreshRaw(refresh.Token)); err != nil {
		return "", err
	}
	h.setRefreshCookie(c, refresh.Token, refresh.Exp)
	return access.Token, nil
}

func readRefreshCookie(c echo.Context) string {
	ck, err := c.Cookie(refreshCookieName)
	if err != nil || ck == nil {
		return ""
	}
	return ck.Value
}

// setRefreshCookie writes the refresh cookie: httpOnly always,
// SameSite=Strict always, Secure only in production so local
// development over plain HTTP keeps working.
func (h *AuthHandler) setRefreshCookie(c echo.Context, token string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/v1/auth",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}
