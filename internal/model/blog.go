package model

import (
	"database/sql"
	"time"
)

// Blog status values stored in blogs.status.  Drafts are visible
// only to admins and the author; published posts are visible to
// every authenticated user.
const (
	BlogDraft     = "draft"
	BlogPublished = "published"
)

// Blog represents a row in the `blogs` table.
//
// Fields:
//  ID            – primary key identifier.
//  AuthorID      – user who created the post; ownership checks
//                  compare this field against the authenticated identity.
//  Title         – post title, used to derive the slug.
//  Slug          – unique URL handle (title plus a random suffix).
//  Content       – sanitized HTML body.
//  BannerURL     – optional banner image URL (upload pipeline is external).
//  Status        – "draft" or "published".
//  LikesCount    – denormalized like counter, adjusted atomically.
//  CommentsCount – denormalized comment counter, adjusted atomically.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Blog struct {
	ID            uint64
	AuthorID      uint64
	Title         string
	Slug          string
	Content       string
	BannerURL     sql.NullString
	Status        string
	LikesCount    uint64
	CommentsCount uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
