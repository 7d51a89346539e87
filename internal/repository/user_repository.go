package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/classless/blog-api/internal/model"
	"github.com/classless/blog-api/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,role,first_name,last_name," +
	"website,facebook,instagram,x,youtube,created_at,updated_at"

// Create inserts a user with a freshly hashed password and returns its ID.
// Unique index collisions on email/username map to the package sentinels.
func (r *UserRepo) Create(ctx context.Context, username, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role) VALUES (?,?,?,?)",
		username, email, hash, role)
	if err != nil {
		return 0, dupeErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// List returns users ordered by creation time, newest first.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update persists profile fields and, when NewPassword is non-empty,
// re-hashes and replaces the stored password.  The caller passes the
// already-loaded user with mutated fields.
func (r *UserRepo) Update(ctx context.Context, u model.User, newPassword string, cost int) error {
	if newPassword != "" {
		hash, err := utils.HashPassword(newPassword, cost)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET username=?, email=?, password_hash=?, first_name=?, last_name=?,
		 website=?, facebook=?, instagram=?, x=?, youtube=? WHERE id=?`,
		u.Username, strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash,
		u.FirstName, u.LastName,
		u.SocialLinks.Website, u.SocialLinks.Facebook, u.SocialLinks.Instagram,
		u.SocialLinks.X, u.SocialLinks.YouTube, u.ID)
	if err != nil {
		return dupeErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// 0 rows can also mean "no change"; treat a vanished user as gone
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a user row.  Missing rows report sql.ErrNoRows.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *UserRepo) scanOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, query, arg))
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName,
		&u.SocialLinks.Website, &u.SocialLinks.Facebook, &u.SocialLinks.Instagram,
		&u.SocialLinks.X, &u.SocialLinks.YouTube,
		&u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// dupeErr maps MySQL duplicate-key failures (error 1062) onto the
// sentinel matching the violated index.
func dupeErr(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "username") {
		return ErrUsernameExists
	}
	return ErrEmailExists
}
