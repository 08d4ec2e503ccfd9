package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"network/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (username, email, password_hashed, avatar_url, avatar_key, avatar_thumb_url, avatar_thumb_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, followers_count, following_count, post_count, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHashed,
		u.AvatarURL,
		u.AvatarKey,
		u.AvatarThumbURL,
		u.AvatarThumbKey,
	)

	err := row.Scan(
		&u.ID,
		&u.FollowersCount,
		&u.FollowingCount,
		&u.PostCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hashed, avatar_url, avatar_key, avatar_thumb_url, avatar_thumb_key,
		       followers_count, following_count, post_count, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by their username (case-insensitive)
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hashed, avatar_url, avatar_key, avatar_thumb_url, avatar_thumb_key,
		       followers_count, following_count, post_count, created_at, updated_at
		FROM users
		WHERE LOWER(username) = LOWER($1)
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &u, nil
}

// ExistsByUsername checks if a username is already taken, case-insensitively.
// The unique index on LOWER(username) is the hard guarantee; this check
// exists to surface a friendly error before the insert.
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(username) = LOWER($1))`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// ExistsByEmail checks if an email is already taken, case-insensitively.
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// UpdateAvatar swaps the stored avatar references in a transaction and
// returns the keys they replaced. The old row is locked so two concurrent
// uploads cannot both read the same previous keys.
func (r *userRepository) UpdateAvatar(ctx context.Context, userID int64, url, key, thumbURL, thumbKey string) (*string, *string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var old struct {
		AvatarKey      *string `db:"avatar_key"`
		AvatarThumbKey *string `db:"avatar_thumb_key"`
	}
	err = tx.GetContext(ctx, &old, `SELECT avatar_key, avatar_thumb_key FROM users WHERE id = $1 FOR UPDATE`, userID)
	if err == sql.ErrNoRows {
		return nil, nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lock user row: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET avatar_url = $1, avatar_key = $2, avatar_thumb_url = $3, avatar_thumb_key = $4, updated_at = NOW()
		WHERE id = $5
	`, url, key, thumbURL, thumbKey, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("update avatar: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit transaction: %w", err)
	}

	return old.AvatarKey, old.AvatarThumbKey, nil
}
