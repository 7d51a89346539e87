package model

import "time"

// Comment models an entry in the `comments` table.  The UserID
// field is the owning identity for authorization purposes: only
// the commenter or an admin may delete a comment.
type Comment struct {
	ID        uint64
	BlogID    uint64
	UserID    uint64
	Content   string
	CreatedAt time.Time
}
