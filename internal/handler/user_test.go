package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/classless/blog-api/internal/utils"
)

type userFixture struct {
	h      *UserHandler
	users  *fakeUsers
	tokens *fakeTokens
}

func newUserFixture(t *testing.T) userFixture {
	t.Helper()
	users := newFakeUsers()
	tokens := newFakeTokens()
	cfg := testConfig()
	if _, err := users.Create(context.Background(), "user-admin1", "admin@b.com", "pw123456", "admin", cfg.BcryptCost); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if _, err := users.Create(context.Background(), "user-abc123", "a@b.com", "pw123456", "user", cfg.BcryptCost); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return userFixture{h: NewUserHandler(cfg, users, tokens), users: users, tokens: tokens}
}

func TestUserCurrent(t *testing.T) {
	f := newUserFixture(t)

	rec := doAs(t, f.h.Current, userIdent, http.MethodGet, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		User struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeJSON(t, rec, &resp)
	if resp.User.ID != 2 || resp.User.Email != "a@b.com" {
		t.Fatalf("user = %+v", resp.User)
	}
}

func TestUserCurrentNeverExposesPassword(t *testing.T) {
	f := newUserFixture(t)
	rec := doAs(t, f.h.Current, userIdent, http.MethodGet, "", nil)
	body := rec.Body.String()
	for _, needle := range []string{"password", "$2a$", "$2b$"} {
		if strings.Contains(body, needle) {
			t.Fatalf("response leaks %q: %s", needle, body)
		}
	}
}

func TestUserUpdateProfileFields(t *testing.T) {
	f := newUserFixture(t)

	rec := doAs(t, f.h.UpdateCurrent, userIdent, http.MethodPut,
		`{"firstName":"Ada","website":"https://ada.dev"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		User struct {
			FirstName   string            `json:"firstName"`
			SocialLinks map[string]string `json:"socialLinks"`
			Email       string            `json:"email"`
		} `json:"user"`
	}
	decodeJSON(t, rec, &resp)
	if resp.User.FirstName != "Ada" {
		t.Fatalf("firstName = %q", resp.User.FirstName)
	}
	if resp.User.SocialLinks["website"] != "https://ada.dev" {
		t.Fatalf("socialLinks = %+v", resp.User.SocialLinks)
	}
	// untouched fields survive a partial update
	if resp.User.Email != "a@b.com" {
		t.Fatalf("email = %q, want unchanged", resp.User.Email)
	}
}

func TestUserUpdatePasswordRehashes(t *testing.T) {
	f := newUserFixture(t)

	before, _ := f.users.GetByID(context.Background(), 2)
	rec := doAs(t, f.h.UpdateCurrent, userIdent, http.MethodPut, `{"password":"new-pw-99"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	after, _ := f.users.GetByID(context.Background(), 2)
	if before.PasswordHash == after.PasswordHash {
		t.Fatal("password hash unchanged after password update")
	}
	if !utils.VerifyPassword(after.PasswordHash, "new-pw-99") {
		t.Fatal("new password does not verify")
	}
}

func TestUserUpdateDuplicateEmail(t *testing.T) {
	f := newUserFixture(t)
	rec := doAs(t, f.h.UpdateCurrent, userIdent, http.MethodPut, `{"email":"admin@b.com"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// Deleting an account revokes every refresh token the user holds, so a
// stolen cookie cannot outlive the account.
func TestUserDeleteCurrentRevokesSessions(t *testing.T) {
	f := newUserFixture(t)
	_ = f.tokens.Store(context.Background(), 2, utils.HashRefreshRaw("session-one"))
	_ = f.tokens.Store(context.Background(), 2, utils.HashRefreshRaw("session-two"))
	_ = f.tokens.Store(context.Background(), 1, utils.HashRefreshRaw("admin-session"))

	rec := doAs(t, f.h.DeleteCurrent, userIdent, http.MethodDelete, "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, err := f.users.GetByID(context.Background(), 2); err == nil {
		t.Fatal("user still present after delete")
	}
	if f.tokens.count() != 1 {
		t.Fatalf("token rows = %d, want only the admin session left", f.tokens.count())
	}
}

func TestUserAdminDelete(t *testing.T) {
	f := newUserFixture(t)
	rec := doAs(t, f.h.Delete, adminIdent, http.MethodDelete, "", map[string]string{"userId": "2"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	rec = doAs(t, f.h.Delete, adminIdent, http.MethodDelete, "", map[string]string{"userId": "2"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete: status = %d, want 404", rec.Code)
	}
}

func TestUserList(t *testing.T) {
	f := newUserFixture(t)
	rec := doAs(t, f.h.List, adminIdent, http.MethodGet, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Users []struct {
			ID uint64 `json:"id"`
		} `json:"users"`
	}
	decodeJSON(t, rec, &resp)
	if len(resp.Users) != 2 {
		t.Fatalf("users = %d, want 2", len(resp.Users))
	}
}
