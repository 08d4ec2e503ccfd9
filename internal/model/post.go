package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Post represents a user's post with its maintained counters.
type Post struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Content      string    `db:"content" json:"content"`
	LikeCount    int       `db:"like_count" json:"like_count"`
	CommentCount int       `db:"comment_count" json:"comment_count"`
	CreatedAt    time.Time `db:"created_at" json:"timestamp"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}

// FeedPost is a post enriched for feed display: author fields, the viewer's
// like status, and whether the viewer is the author.
type FeedPost struct {
	Post
	Username       string  `db:"username" json:"user"`
	AvatarThumbURL *string `db:"avatar_thumb_url" json:"profile_picture"`
	Liked          bool    `json:"liked"`
	UserIsAuthor   bool    `json:"user_is_author"`
}

// FeedPage is the paginated feed response.
type FeedPage struct {
	Posts   []FeedPost `json:"posts"`
	HasNext bool       `json:"hasNext"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Content string `json:"content"`
}

// UpdatePostRequest is the action-keyed body for PUT/DELETE /posts/{id}.
type UpdatePostRequest struct {
	Action  string `json:"action"`
	Content string `json:"content,omitempty"`
}

// LikeResult carries the toggle outcome and the authoritative post-commit count.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// Update actions
const (
	ActionLike   = "like"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Content limits, counted in characters rather than bytes.
const (
	MaxPostContentLength    = 250
	MaxCommentContentLength = 100
)

// Post errors
var (
	ErrPostNotFound    = errors.New("post does not exist")
	ErrNotPostOwner    = errors.New("not the owner of this post")
	ErrContentRequired = errors.New("content cannot be empty")
	ErrContentTooLong  = errors.New("content exceeds the maximum length")
	ErrInvalidAction   = errors.New("invalid action")

	// ErrViewNotFound is returned for an unrecognized feed view name; the
	// view name itself is the missing resource.
	ErrViewNotFound = errors.New("filter not found")
)

// ValidateContent trims the given content and checks it against the limit.
// Returns the trimmed content on success.
func ValidateContent(content string, limit int) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrContentRequired
	}
	if utf8.RuneCountInString(trimmed) > limit {
		return "", ErrContentTooLong
	}
	return trimmed, nil
}
