package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"network/internal/model"
	"network/internal/pagination"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// ExistsByUsername and ExistsByEmail compare case-insensitively.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateAvatar swaps the stored avatar references and returns the keys
	// they replaced so the caller can schedule storage cleanup post-commit.
	UpdateAvatar(ctx context.Context, userID int64, url, key, thumbURL, thumbKey string) (oldKey, oldThumbKey *string, err error)
}

// FeedFilter selects the base post set for a feed view. Zero value means the
// `all` view; the pointers narrow it to a follower's home feed or one
// author's profile.
type FeedFilter struct {
	FollowerID *int64 // posts authored by users this user follows
	AuthorID   *int64 // posts authored by exactly this user
}

type PostRepository interface {
	// Create inserts the post inside the caller's transaction so the owner's
	// post_count adjustment commits atomically with it.
	Create(ctx context.Context, tx *sqlx.Tx, userID int64, content string) (*model.Post, error)
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	UpdateContent(ctx context.Context, postID, userID int64, content string) (*model.Post, error)
	// Delete removes the post (cascading to comments and like edges) inside
	// the caller's transaction. Ownership is enforced here.
	Delete(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error

	// ListFeed returns up to limit posts matching filter, strictly after
	// cursor in (created_at DESC, id DESC) order, joined with author fields.
	ListFeed(ctx context.Context, filter FeedFilter, cursor pagination.Cursor, limit int) ([]model.FeedPost, error)

	// CheckLikes reports which of postIDs the user has liked, one batch query.
	CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)

	Exists(ctx context.Context, postID int64) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, postID, userID int64, content string) (*model.Comment, error)
	Update(ctx context.Context, commentID, userID int64, content string) (*model.Comment, error)
	// Delete removes the comment inside the caller's transaction and returns
	// the post it belonged to for the comment_count decrement.
	Delete(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) (postID int64, err error)
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
}

type FollowRepository interface {
	EdgeStore
	// Exists is the read-path check (no lock) used for profile rendering.
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
}

type LikeRepository interface {
	EdgeStore
}

// EdgeStore is the storage contract the Toggle Engine drives: a directed
// membership fact between an actor and a target entity. All three operations
// run inside the engine's transaction.
type EdgeStore interface {
	// ExistsForUpdate checks membership immediately before mutation, locking
	// the edge row when present so back-to-back toggles serialize.
	ExistsForUpdate(ctx context.Context, tx *sqlx.Tx, actorID, targetID int64) (bool, error)

	// Insert adds the edge. Returns false without error when a concurrent
	// transaction already inserted it (ON CONFLICT DO NOTHING).
	Insert(ctx context.Context, tx *sqlx.Tx, actorID, targetID int64) (bool, error)

	// Delete removes the edge; model.ErrToggleConflict when it was already gone.
	Delete(ctx context.Context, tx *sqlx.Tx, actorID, targetID int64) error
}
