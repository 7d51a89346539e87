package repository

import (
	"context"
	"database/sql"
)

// TokenRepo persists issued refresh tokens (single 'token_hash' column).
// A row's existence is what makes a refresh token acceptable: deleting
// the row is the sole revocation mechanism, so logout physically removes
// it rather than flagging it.  Expiry is enforced by the token's own
// signed exp claim, not by the store.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row.  Called on every refresh
// token issuance (register and login).
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash) VALUES (?,?)",
		userID, tokenHash)
	return err
}

// Exists reports whether a token hash is present in the store.  A
// syntactically valid refresh token whose row is gone must be rejected
// regardless of signature validity.
func (r *TokenRepo) Exists(ctx context.Context, tokenHash string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a token row.  Deleting an absent row is a no-op, which
// makes logout idempotent.
func (r *TokenRepo) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE token_hash=?", tokenHash)
	return err
}

// DeleteAllForUser removes every refresh token of a user, ending all of
// their sessions.  Used when an account is deleted.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}
