package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a post.
type Comment struct {
	ID        int64        `db:"id" json:"id"`
	PostID    int64        `db:"post_id" json:"post_id"`
	UserID    int64        `db:"user_id" json:"user_id"`
	Content   string       `db:"content" json:"content"`
	CreatedAt time.Time    `db:"created_at" json:"timestamp"`
	Author    *UserSummary `json:"author,omitempty"` // Joined field

	// UserIsAuthor is a per-viewer flag, never persisted.
	UserIsAuthor bool `json:"user_is_author"`
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// UpdateCommentRequest is the action-keyed body for PUT/DELETE /comments/{id}.
type UpdateCommentRequest struct {
	Action  string `json:"action"`
	Content string `json:"content,omitempty"`
}

// CommentList is a non-paginated comment listing with the post's authoritative count.
type CommentList struct {
	Comments     []Comment `json:"comments"`
	CommentCount int       `json:"commentCount"`
}

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment does not exist")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
)
