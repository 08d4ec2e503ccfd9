package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"network/internal/model"
)

// likeRepository is the user->post edge store behind like_count.
type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// ExistsForUpdate checks membership inside the toggle transaction, locking
// the edge row when present so a concurrent unlike waits for this toggle.
func (r *likeRepository) ExistsForUpdate(ctx context.Context, tx *sqlx.Tx, userID, postID int64) (bool, error) {
	var one int
	err := tx.GetContext(ctx, &one, `SELECT 1 FROM post_likes WHERE user_id = $1 AND post_id = $2 FOR UPDATE`, userID, postID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check like existence: %w", err)
	}
	return true, nil
}

func (r *likeRepository) Insert(ctx context.Context, tx *sqlx.Tx, userID, postID int64) (bool, error) {
	query := `
		INSERT INTO post_likes (user_id, post_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, userID, postID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *likeRepository) Delete(ctx context.Context, tx *sqlx.Tx, userID, postID int64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrToggleConflict
	}
	return nil
}
