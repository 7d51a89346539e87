package repository

import (
	"context"
	"database/sql"

	"github.com/classless/blog-api/internal/model"
)

type BlogRepo struct{ DB *sql.DB }

func NewBlogRepo(db *sql.DB) *BlogRepo { return &BlogRepo{DB: db} }

const blogColumns = "id,author_id,title,slug,content,banner_url,status," +
	"likes_count,comments_count,created_at,updated_at"

// Create inserts a blog and returns its ID.
func (r *BlogRepo) Create(ctx context.Context, b model.Blog) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO blogs (author_id, title, slug, content, banner_url, status) VALUES (?,?,?,?,?,?)",
		b.AuthorID, b.Title, b.Slug, b.Content, b.BannerURL, b.Status)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a blog by id.
func (r *BlogRepo) GetByID(ctx context.Context, id uint64) (model.Blog, error) {
	return scanBlog(r.DB.QueryRowContext(ctx,
		"SELECT "+blogColumns+" FROM blogs WHERE id=? LIMIT 1", id))
}

// GetBySlug fetches a blog by its unique slug.
func (r *BlogRepo) GetBySlug(ctx context.Context, slug string) (model.Blog, error) {
	return scanBlog(r.DB.QueryRowContext(ctx,
		"SELECT "+blogColumns+" FROM blogs WHERE slug=? LIMIT 1", slug))
}

// List returns blogs newest first.  When publishedOnly is set, drafts
// are filtered out at the query level.
func (r *BlogRepo) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]model.Blog, error) {
	q := "SELECT " + blogColumns + " FROM blogs"
	args := []interface{}{}
	if publishedOnly {
		q += " WHERE status=?"
		args = append(args, model.BlogPublished)
	}
	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	return r.queryBlogs(ctx, q, args...)
}

// ListByAuthor returns one author's blogs newest first, with the same
// draft filtering as List.
func (r *BlogRepo) ListByAuthor(ctx context.Context, authorID uint64, publishedOnly bool, limit, offset int) ([]model.Blog, error) {
	q := "SELECT " + blogColumns + " FROM blogs WHERE author_id=?"
	args := []interface{}{authorID}
	if publishedOnly {
		q += " AND status=?"
		args = append(args, model.BlogPublished)
	}
	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	return r.queryBlogs(ctx, q, args...)
}

// Update persists the mutable blog fields (title, slug, content,
// banner, status).  Counters are adjusted only through AdjustCounters.
func (r *BlogRepo) Update(ctx context.Context, b model.Blog) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE blogs SET title=?, slug=?, content=?, banner_url=?, status=? WHERE id=?",
		b.Title, b.Slug, b.Content, b.BannerURL, b.Status, b.ID)
	return err
}

// Delete removes a blog and its dependent comments and likes.  Missing
// rows report sql.ErrNoRows.
func (r *BlogRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM blogs WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	// Dependent rows; foreign keys with ON DELETE CASCADE make these
	// no-ops, the explicit deletes keep behavior correct without them.
	_, _ = r.DB.ExecContext(ctx, "DELETE FROM comments WHERE blog_id=?", id)
	_, _ = r.DB.ExecContext(ctx, "DELETE FROM likes WHERE blog_id=?", id)
	return nil
}

// AdjustCounters applies like/comment counter deltas in one atomic
// UPDATE.  Concurrent likes and comments on the same blog therefore
// cannot lose updates the way read-modify-write would.  Counters floor
// at zero, and a blog deleted concurrently simply yields zero affected
// rows; callers treat that as a soft no-op.
func (r *BlogRepo) AdjustCounters(ctx context.Context, id uint64, likesDelta, commentsDelta int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE blogs
		 SET likes_count    = GREATEST(CAST(likes_count AS SIGNED) + ?, 0),
		     comments_count = GREATEST(CAST(comments_count AS SIGNED) + ?, 0)
		 WHERE id=?`,
		likesDelta, commentsDelta, id)
	return err
}

func (r *BlogRepo) queryBlogs(ctx context.Context, q string, args ...interface{}) ([]model.Blog, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBlog(row rowScanner) (model.Blog, error) {
	var b model.Blog
	err := row.Scan(&b.ID, &b.AuthorID, &b.Title, &b.Slug, &b.Content, &b.BannerURL,
		&b.Status, &b.LikesCount, &b.CommentsCount, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}
