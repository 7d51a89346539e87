// Package queue defines the activity event payloads exchanged over
// RabbitMQ and the background consumer that turns them into an
// activity log.  Events are best-effort: losing one never fails the
// originating request.
package queue

import "time"

// Queue names.  Durable queues, one per event kind.
const (
	QueueBlogPublished  = "blog.published"
	QueueCommentCreated = "comment.created"
)

// BlogPublishedEvent is emitted when a blog is created with, or updated
// to, published status.
type BlogPublishedEvent struct {
	BlogID      uint64    `json:"blog_id"`
	AuthorID    uint64    `json:"author_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	PublishedAt time.Time `json:"published_at"`
}

// CommentCreatedEvent is emitted when a comment lands on a blog.
type CommentCreatedEvent struct {
	CommentID uint64    `json:"comment_id"`
	BlogID    uint64    `json:"blog_id"`
	UserID    uint64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
