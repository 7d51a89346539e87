package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/classless/blog-api/internal/model"
)

type LikeRepo struct{ DB *sql.DB }

func NewLikeRepo(db *sql.DB) *LikeRepo { return &LikeRepo{DB: db} }

// Create inserts a like.  The unique (blog_id, user_id) index rejects a
// second like from the same user; that collision maps to ErrAlreadyLiked.
func (r *LikeRepo) Create(ctx context.Context, blogID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO likes (blog_id, user_id) VALUES (?,?)",
		blogID, userID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrAlreadyLiked
	}
	return err
}

// Find returns the like a user placed on a blog, or sql.ErrNoRows.
func (r *LikeRepo) Find(ctx context.Context, blogID, userID uint64) (model.Like, error) {
	var l model.Like
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,blog_id,user_id,created_at FROM likes WHERE blog_id=? AND user_id=? LIMIT 1",
		blogID, userID).Scan(&l.ID, &l.BlogID, &l.UserID, &l.CreatedAt)
	return l, err
}

// Delete removes a like row.  Missing rows report sql.ErrNoRows so an
// unlike without a prior like surfaces as not-found.
func (r *LikeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM likes WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
