package model

import "time"

// Like models a row in the `likes` table.  A user may like a blog
// at most once; the table enforces this with a unique index over
// (blog_id, user_id).
type Like struct {
	ID        uint64
	BlogID    uint64
	UserID    uint64
	CreatedAt time.Time
}
