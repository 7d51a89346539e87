package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user.  The plain token string is never
// stored; only its SHA-256 hash.  A row that exists is a valid,
// unrevoked token; deleting the row is the sole revocation
// mechanism (logout, account deletion).
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token string.
//  CreatedAt – timestamp of issuance.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	CreatedAt time.Time
}
