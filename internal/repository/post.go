package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"network/internal/model"
	"network/internal/pagination"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post inside the caller's transaction. The owner's
// post_count adjustment is issued by the service through the ledger in the
// same transaction.
func (r *postRepository) Create(ctx context.Context, tx *sqlx.Tx, userID int64, content string) (*model.Post, error) {
	query := `
		INSERT INTO posts (user_id, content)
		VALUES ($1, $2)
		RETURNING id, user_id, content, like_count, comment_count, created_at, updated_at
	`
	var post model.Post
	err := tx.GetContext(ctx, &post, query, userID, content)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return &post, nil
}

// GetByID retrieves a single post.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT id, user_id, content, like_count, comment_count, created_at, updated_at
		FROM posts
		WHERE id = $1
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// UpdateContent edits a post's content. Only the owner can edit; a row that
// exists under a different owner is reported as an ownership violation.
func (r *postRepository) UpdateContent(ctx context.Context, postID, userID int64, content string) (*model.Post, error) {
	query := `
		UPDATE posts
		SET content = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, content, like_count, comment_count, created_at, updated_at
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, content, postID, userID)
	if err == sql.ErrNoRows {
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
		if exists {
			return nil, model.ErrNotPostOwner
		}
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return &post, nil
}

// Delete removes a post inside the caller's transaction. Comments and like
// edges go with it via ON DELETE CASCADE.
func (r *postRepository) Delete(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing post from someone else's post.
		var exists bool
		tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
		if exists {
			return model.ErrNotPostOwner
		}
		return model.ErrPostNotFound
	}

	return nil
}

// ListFeed returns posts matching filter in (created_at DESC, id DESC) order,
// resuming strictly after cursor when one is supplied. The compound tuple
// compare is what keeps pages exact when timestamps collide; filtering by
// created_at alone would drop or duplicate the tied rows.
func (r *postRepository) ListFeed(ctx context.Context, filter FeedFilter, cursor pagination.Cursor, limit int) ([]model.FeedPost, error) {
	query := `
		SELECT p.id, p.user_id, p.content, p.like_count, p.comment_count, p.created_at, p.updated_at,
		       u.username, u.avatar_thumb_url
		FROM posts p
		JOIN users u ON u.id = p.user_id
	`
	var args []interface{}
	var conds []string

	if filter.FollowerID != nil {
		args = append(args, *filter.FollowerID)
		conds = append(conds, fmt.Sprintf(`p.user_id IN (SELECT followee_id FROM follows WHERE follower_id = $%d)`, len(args)))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		conds = append(conds, fmt.Sprintf(`p.user_id = $%d`, len(args)))
	}
	if !cursor.IsZero() {
		args = append(args, cursor.Timestamp, cursor.ID)
		conds = append(conds, fmt.Sprintf(`(p.created_at, p.id) < ($%d, $%d)`, len(args)-1, len(args)))
	}

	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}

	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY p.created_at DESC, p.id DESC LIMIT $%d`, len(args))

	var posts []model.FeedPost
	err := r.db.SelectContext(ctx, &posts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}
	return posts, nil
}

// CheckLikes checks which posts the user has liked.
// One batch query over the page's ids, never one query per item.
func (r *postRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if len(postIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT post_id FROM post_likes WHERE user_id = $1 AND post_id = ANY($2)`
	var likedIDs []int64
	err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check likes: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}

	return result, nil
}

// Exists checks if a post exists.
func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}
