package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"network/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment inside the caller's transaction so the post's
// comment_count adjustment commits atomically with it.
func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, postID, userID int64, content string) (*model.Comment, error) {
	query := `
		INSERT INTO post_comments (post_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, user_id, content, created_at
	`
	var comment model.Comment
	err := tx.GetContext(ctx, &comment, query, postID, userID, content)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// Update edits a comment's content. Only the owner can edit.
func (r *commentRepository) Update(ctx context.Context, commentID, userID int64, content string) (*model.Comment, error) {
	query := `
		UPDATE post_comments
		SET content = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, post_id, user_id, content, created_at
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, content, commentID, userID)
	if err == sql.ErrNoRows {
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM post_comments WHERE id = $1)`, commentID)
		if exists {
			return nil, model.ErrNotCommentOwner
		}
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &comment, nil
}

// Delete removes a comment inside the caller's transaction and returns the
// post it belonged to for the counter decrement. Only the owner can delete.
func (r *commentRepository) Delete(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) (int64, error) {
	var comment struct {
		PostID int64 `db:"post_id"`
		UserID int64 `db:"user_id"`
	}
	err := tx.GetContext(ctx, &comment, `SELECT post_id, user_id FROM post_comments WHERE id = $1`, commentID)
	if err == sql.ErrNoRows {
		return 0, model.ErrCommentNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get comment: %w", err)
	}

	if comment.UserID != userID {
		return 0, model.ErrNotCommentOwner
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM post_comments WHERE id = $1`, commentID)
	if err != nil {
		return 0, fmt.Errorf("delete comment: %w", err)
	}

	return comment.PostID, nil
}

// ListByPost returns a post's comments, newest first, with author fields.
func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
		       u.id AS author_id, u.username AS author_username, u.avatar_thumb_url AS author_avatar
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`

	type commentRow struct {
		ID             int64     `db:"id"`
		PostID         int64     `db:"post_id"`
		UserID         int64     `db:"user_id"`
		Content        string    `db:"content"`
		CreatedAt      time.Time `db:"created_at"`
		AuthorID       int64     `db:"author_id"`
		AuthorUsername string    `db:"author_username"`
		AuthorAvatar   *string   `db:"author_avatar"`
	}

	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = model.Comment{
			ID:        row.ID,
			PostID:    row.PostID,
			UserID:    row.UserID,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
			Author: &model.UserSummary{
				ID:             row.AuthorID,
				Username:       row.AuthorUsername,
				AvatarThumbURL: row.AuthorAvatar,
			},
		}
	}

	return comments, nil
}

// GetByID retrieves a single comment.
func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `
		SELECT id, post_id, user_id, content, created_at
		FROM post_comments
		WHERE id = $1
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}
