package handler

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/classless/blog-api/internal/model"
	"github.com/classless/blog-api/internal/queue"
	"github.com/classless/blog-api/internal/repository"
	"github.com/classless/blog-api/internal/utils"
)

// In-memory stores implementing the handler interfaces.  They mirror
// the repository contracts exactly: sql.ErrNoRows for absent rows, the
// repository sentinel errors for duplicates, and counter deltas that
// floor at zero.

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uint64]model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, username, email, password, role string, cost int) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
		if u.Username == username {
			return 0, repository.ErrUsernameExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	f.nextID++
	now := time.Now().UTC()
	f.users[f.nextID] = model.User{
		ID: f.nextID, Username: username, Email: email,
		PasswordHash: hash, Role: role, CreatedAt: now, UpdatedAt: now,
	}
	return f.nextID, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) List(_ context.Context, limit, offset int) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for id := uint64(1); id <= f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u model.User, newPassword string, cost int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.users[u.ID]
	if !ok {
		return sql.ErrNoRows
	}
	for id, other := range f.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return repository.ErrEmailExists
		}
		if other.Username == u.Username {
			return repository.ErrUsernameExists
		}
	}
	if newPassword != "" {
		hash, err := utils.HashPassword(newPassword, cost)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	} else {
		u.PasswordHash = cur.PasswordHash
	}
	u.UpdatedAt = time.Now().UTC()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

type fakeTokens struct {
	mu   sync.Mutex
	rows map[string]uint64 // token hash -> user ID
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{rows: map[string]uint64{}}
}

func (f *fakeTokens) Store(_ context.Context, userID uint64, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[tokenHash] = userID
	return nil
}

func (f *fakeTokens) Exists(_ context.Context, tokenHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[tokenHash]
	return ok, nil
}

func (f *fakeTokens) Delete(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, tokenHash)
	return nil
}

func (f *fakeTokens) DeleteAllForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for h, uid := range f.rows {
		if uid == userID {
			delete(f.rows, h)
		}
	}
	return nil
}

func (f *fakeTokens) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeBlogs struct {
	mu     sync.Mutex
	nextID uint64
	blogs  map[uint64]model.Blog
}

func newFakeBlogs() *fakeBlogs {
	return &fakeBlogs{blogs: map[uint64]model.Blog{}}
}

func (f *fakeBlogs) Create(_ context.Context, b model.Blog) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	f.blogs[b.ID] = b
	return b.ID, nil
}

func (f *fakeBlogs) GetByID(_ context.Context, id uint64) (model.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	if !ok {
		return model.Blog{}, sql.ErrNoRows
	}
	return b, nil
}

func (f *fakeBlogs) GetBySlug(_ context.Context, slug string) (model.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.blogs {
		if b.Slug == slug {
			return b, nil
		}
	}
	return model.Blog{}, sql.ErrNoRows
}

func (f *fakeBlogs) List(_ context.Context, publishedOnly bool, limit, offset int) ([]model.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Blog
	for id := uint64(1); id <= f.nextID; id++ {
		b, ok := f.blogs[id]
		if !ok {
			continue
		}
		if publishedOnly && b.Status != model.BlogPublished {
			continue
		}
		out = append(out, b)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBlogs) ListByAuthor(ctx context.Context, authorID uint64, publishedOnly bool, limit, offset int) ([]model.Blog, error) {
	all, err := f.List(ctx, publishedOnly, f.sizeHint(), 0)
	if err != nil {
		return nil, err
	}
	var out []model.Blog
	for _, b := range all {
		if b.AuthorID == authorID {
			out = append(out, b)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBlogs) sizeHint() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blogs) + 1
}

func (f *fakeBlogs) Update(_ context.Context, b model.Blog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.blogs[b.ID]
	if !ok {
		return sql.ErrNoRows
	}
	b.CreatedAt = cur.CreatedAt
	b.UpdatedAt = time.Now().UTC()
	f.blogs[b.ID] = b
	return nil
}

func (f *fakeBlogs) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.blogs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.blogs, id)
	return nil
}

func (f *fakeBlogs) AdjustCounters(_ context.Context, id uint64, likesDelta, commentsDelta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	if !ok {
		return nil // zero affected rows is a soft no-op
	}
	b.LikesCount = applyDelta(b.LikesCount, likesDelta)
	b.CommentsCount = applyDelta(b.CommentsCount, commentsDelta)
	f.blogs[id] = b
	return nil
}

func applyDelta(v uint64, d int) uint64 {
	n := int64(v) + int64(d)
	if n < 0 {
		return 0
	}
	return uint64(n)
}

type fakeComments struct {
	mu       sync.Mutex
	nextID   uint64
	comments map[uint64]model.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{comments: map[uint64]model.Comment{}}
}

func (f *fakeComments) Create(_ context.Context, c model.Comment) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now().UTC()
	f.comments[c.ID] = c
	return c.ID, nil
}

func (f *fakeComments) GetByID(_ context.Context, id uint64) (model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return model.Comment{}, sql.ErrNoRows
	}
	return c, nil
}

func (f *fakeComments) ListByBlog(_ context.Context, blogID uint64) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Comment
	for id := uint64(1); id <= f.nextID; id++ {
		if c, ok := f.comments[id]; ok && c.BlogID == blogID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.comments, id)
	return nil
}

type fakeLikes struct {
	mu     sync.Mutex
	nextID uint64
	likes  map[uint64]model.Like
}

func newFakeLikes() *fakeLikes {
	return &fakeLikes{likes: map[uint64]model.Like{}}
}

func (f *fakeLikes) Create(_ context.Context, blogID, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.likes {
		if l.BlogID == blogID && l.UserID == userID {
			return repository.ErrAlreadyLiked
		}
	}
	f.nextID++
	f.likes[f.nextID] = model.Like{ID: f.nextID, BlogID: blogID, UserID: userID, CreatedAt: time.Now().UTC()}
	return nil
}

func (f *fakeLikes) Find(_ context.Context, blogID, userID uint64) (model.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.likes {
		if l.BlogID == blogID && l.UserID == userID {
			return l, nil
		}
	}
	return model.Like{}, sql.ErrNoRows
}

func (f *fakeLikes) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.likes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.likes, id)
	return nil
}

// fakeEvents records published events so tests can assert on them.
type fakeEvents struct {
	mu        sync.Mutex
	published []queue.BlogPublishedEvent
	commented []queue.CommentCreatedEvent
}

func (f *fakeEvents) BlogPublished(_ context.Context, ev queue.BlogPublishedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, ev)
	return nil
}

func (f *fakeEvents) CommentCreated(_ context.Context, ev queue.CommentCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commented = append(f.commented, ev)
	return nil
}
