package repository

import (
	"context"
	"database/sql"

	"github.com/classless/blog-api/internal/model"
)

type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// Create inserts a comment and returns its ID.  The caller bumps the
// blog's comment counter separately via BlogRepo.AdjustCounters.
func (r *CommentRepo) Create(ctx context.Context, c model.Comment) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (blog_id, user_id, content) VALUES (?,?,?)",
		c.BlogID, c.UserID, c.Content)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a comment by id.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	var c model.Comment
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,blog_id,user_id,content,created_at FROM comments WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.BlogID, &c.UserID, &c.Content, &c.CreatedAt)
	return c, err
}

// ListByBlog returns a blog's comments oldest first.
func (r *CommentRepo) ListByBlog(ctx context.Context, blogID uint64) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,blog_id,user_id,content,created_at FROM comments WHERE blog_id=? ORDER BY created_at ASC",
		blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.BlogID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a comment row.  Missing rows report sql.ErrNoRows.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
