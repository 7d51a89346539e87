package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/classless/blog-api/internal/auth"
	"github.com/classless/blog-api/internal/model"
)

var (
	adminIdent = auth.Identity{UserID: 1, Role: model.RoleAdmin}
	userIdent  = auth.Identity{UserID: 2, Role: model.RoleUser}
	otherIdent = auth.Identity{UserID: 3, Role: model.RoleUser}
)

// doAs runs a handler as the given identity, with optional path
// parameters and a JSON body.
func doAs(t *testing.T, h echo.HandlerFunc, ident auth.Identity, method, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(identityKey, ident)
	var names, values []string
	for name, value := range params {
		names = append(names, name)
		values = append(values, value)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func seedBlog(t *testing.T, blogs *fakeBlogs, authorID uint64, status string) model.Blog {
	t.Helper()
	id, err := blogs.Create(context.Background(), model.Blog{
		AuthorID: authorID,
		Title:    "Seed Post",
		Slug:     "seed-post-abc123",
		Content:  "<p>hello</p>",
		Status:   status,
	})
	if err != nil {
		t.Fatalf("seed blog: %v", err)
	}
	b, err := blogs.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload seed blog: %v", err)
	}
	return b
}

func TestBlogCreate(t *testing.T) {
	blogs := newFakeBlogs()
	events := &fakeEvents{}
	h := NewBlogHandler(blogs, events)

	rec := doAs(t, h.Create, adminIdent, http.MethodPost,
		`{"title":"My First Post","content":"<p>hi</p><script>alert(1)</script>","status":"published"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Blog struct {
			ID      uint64 `json:"id"`
			Slug    string `json:"slug"`
			Content string `json:"content"`
			Status  string `json:"status"`
		} `json:"blog"`
	}
	decodeJSON(t, rec, &resp)
	if !strings.HasPrefix(resp.Blog.Slug, "my-first-post-") {
		t.Fatalf("slug = %q", resp.Blog.Slug)
	}
	if strings.Contains(resp.Blog.Content, "<script>") {
		t.Fatalf("content not sanitized: %q", resp.Blog.Content)
	}
	if resp.Blog.Status != model.BlogPublished {
		t.Fatalf("status = %q", resp.Blog.Status)
	}
	if len(events.published) != 1 {
		t.Fatalf("published events = %d, want 1", len(events.published))
	}
}

func TestBlogCreateDefaultsToDraft(t *testing.T) {
	blogs := newFakeBlogs()
	events := &fakeEvents{}
	h := NewBlogHandler(blogs, events)

	rec := doAs(t, h.Create, adminIdent, http.MethodPost, `{"title":"T","content":"c"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Blog struct {
			Status string `json:"status"`
		} `json:"blog"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Blog.Status != model.BlogDraft {
		t.Fatalf("status = %q, want draft", resp.Blog.Status)
	}
	if len(events.published) != 0 {
		t.Fatal("draft creation must not emit a published event")
	}
}

func TestBlogCreateInvalidStatus(t *testing.T) {
	h := NewBlogHandler(newFakeBlogs(), nil)
	rec := doAs(t, h.Create, adminIdent, http.MethodPost, `{"title":"T","content":"c","status":"archived"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBlogListHidesDraftsFromUsers(t *testing.T) {
	blogs := newFakeBlogs()
	seedBlog(t, blogs, 1, model.BlogPublished)
	seedBlog(t, blogs, 1, model.BlogDraft)
	h := NewBlogHandler(blogs, nil)

	var resp struct {
		Blogs []struct {
			Status string `json:"status"`
		} `json:"blogs"`
	}

	rec := doAs(t, h.List, userIdent, http.MethodGet, "", nil)
	decodeJSON(t, rec, &resp)
	if len(resp.Blogs) != 1 || resp.Blogs[0].Status != model.BlogPublished {
		t.Fatalf("user sees %d blogs: %+v", len(resp.Blogs), resp.Blogs)
	}

	rec = doAs(t, h.List, adminIdent, http.MethodGet, "", nil)
	resp.Blogs = nil
	decodeJSON(t, rec, &resp)
	if len(resp.Blogs) != 2 {
		t.Fatalf("admin sees %d blogs, want 2", len(resp.Blogs))
	}
}

func TestBlogGetBySlugDraftVisibility(t *testing.T) {
	blogs := newFakeBlogs()
	draft := seedBlog(t, blogs, userIdent.UserID, model.BlogDraft)
	h := NewBlogHandler(blogs, nil)
	params := map[string]string{"slug": draft.Slug}

	if rec := doAs(t, h.GetBySlug, userIdent, http.MethodGet, "", params); rec.Code != http.StatusOK {
		t.Fatalf("author: status = %d", rec.Code)
	}
	if rec := doAs(t, h.GetBySlug, adminIdent, http.MethodGet, "", params); rec.Code != http.StatusOK {
		t.Fatalf("admin: status = %d", rec.Code)
	}
	rec := doAs(t, h.GetBySlug, otherIdent, http.MethodGet, "", params)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("other user: status = %d, want 403", rec.Code)
	}
	var body struct{ Code string }
	decodeJSON(t, rec, &body)
	if body.Code != "AuthorizationError" {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestBlogGetBySlugNotFound(t *testing.T) {
	h := NewBlogHandler(newFakeBlogs(), nil)
	rec := doAs(t, h.GetBySlug, userIdent, http.MethodGet, "", map[string]string{"slug": "missing"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestBlogUpdateOwnership(t *testing.T) {
	blogs := newFakeBlogs()
	b := seedBlog(t, blogs, userIdent.UserID, model.BlogDraft)
	h := NewBlogHandler(blogs, nil)
	params := map[string]string{"blogId": "1"}

	rec := doAs(t, h.Update, otherIdent, http.MethodPut, `{"title":"Hijacked"}`, params)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: status = %d, want 403", rec.Code)
	}
	got, _ := blogs.GetByID(context.Background(), b.ID)
	if got.Title != b.Title {
		t.Fatal("denied update still mutated the blog")
	}

	rec = doAs(t, h.Update, userIdent, http.MethodPut, `{"title":"New Title"}`, params)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update: status = %d: %s", rec.Code, rec.Body.String())
	}
	got, _ = blogs.GetByID(context.Background(), b.ID)
	if got.Title != "New Title" {
		t.Fatalf("title = %q", got.Title)
	}
}

func TestBlogUpdatePublishEmitsEventOnce(t *testing.T) {
	blogs := newFakeBlogs()
	seedBlog(t, blogs, userIdent.UserID, model.BlogDraft)
	events := &fakeEvents{}
	h := NewBlogHandler(blogs, events)
	params := map[string]string{"blogId": "1"}

	if rec := doAs(t, h.Update, userIdent, http.MethodPut, `{"status":"published"}`, params); rec.Code != http.StatusOK {
		t.Fatalf("publish: status = %d", rec.Code)
	}
	if rec := doAs(t, h.Update, userIdent, http.MethodPut, `{"title":"Edited"}`, params); rec.Code != http.StatusOK {
		t.Fatalf("edit: status = %d", rec.Code)
	}
	if len(events.published) != 1 {
		t.Fatalf("published events = %d, want 1 on the draft-to-published transition only", len(events.published))
	}
}

func TestBlogDeleteOwnership(t *testing.T) {
	blogs := newFakeBlogs()
	seedBlog(t, blogs, userIdent.UserID, model.BlogPublished)
	h := NewBlogHandler(blogs, nil)
	params := map[string]string{"blogId": "1"}

	if rec := doAs(t, h.Delete, otherIdent, http.MethodDelete, "", params); rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: status = %d, want 403", rec.Code)
	}
	if rec := doAs(t, h.Delete, userIdent, http.MethodDelete, "", params); rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete: status = %d, want 204", rec.Code)
	}
	if rec := doAs(t, h.Delete, userIdent, http.MethodDelete, "", params); rec.Code != http.StatusNotFound {
		t.Fatalf("delete again: status = %d, want 404", rec.Code)
	}
}

func TestBlogDeleteByAdmin(t *testing.T) {
	blogs := newFakeBlogs()
	seedBlog(t, blogs, userIdent.UserID, model.BlogPublished)
	h := NewBlogHandler(blogs, nil)

	rec := doAs(t, h.Delete, adminIdent, http.MethodDelete, "", map[string]string{"blogId": "1"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete: status = %d, want 204", rec.Code)
	}
}
