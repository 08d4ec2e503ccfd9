package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"network/internal/model"
)

// Entity names a table carrying denormalized counter columns.
type Entity string

// Field names a counter column on an entity.
type Field string

const (
	EntityUser Entity = "users"
	EntityPost Entity = "posts"
)

const (
	FieldPostCount      Field = "post_count"
	FieldFollowersCount Field = "followers_count"
	FieldFollowingCount Field = "following_count"
	FieldLikeCount      Field = "like_count"
	FieldCommentCount   Field = "comment_count"
)

// counterColumns is the closed set of (entity, field) pairs the ledger may
// touch. Queries are assembled only from these constants, never from input.
var counterColumns = map[Entity]map[Field]bool{
	EntityUser: {
		FieldPostCount:      true,
		FieldFollowersCount: true,
		FieldFollowingCount: true,
	},
	EntityPost: {
		FieldLikeCount:    true,
		FieldCommentCount: true,
	},
}

// CounterLedger applies relative counter adjustments inside the same
// transaction as the fact-table write they mirror. Adjustments are always
// in-place (`field = field + delta`); the ledger never computes a new value
// from a previously loaded one, so concurrent callers cannot lose updates.
type CounterLedger interface {
	// Adjust updates one counter by delta inside the caller's transaction.
	// If the fact write in the same transaction fails, the caller's rollback
	// discards the adjustment too; the ledger has no independent retry.
	Adjust(ctx context.Context, tx *sqlx.Tx, entity Entity, id int64, field Field, delta int) error

	// ReadPostCounters re-reads a post's durable counters after commit.
	ReadPostCounters(ctx context.Context, postID int64) (likeCount, commentCount int, err error)

	// ReadUserCounters re-reads a user's durable counters after commit.
	ReadUserCounters(ctx context.Context, userID int64) (followers, following, posts int, err error)
}

type counterLedger struct {
	db *sqlx.DB
}

func NewCounterLedger(db *sqlx.DB) CounterLedger {
	return &counterLedger{db: db}
}

func (l *counterLedger) Adjust(ctx context.Context, tx *sqlx.Tx, entity Entity, id int64, field Field, delta int) error {
	if !counterColumns[entity][field] {
		return fmt.Errorf("ledger: no counter %q on entity %q", field, entity)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = %s + $1, updated_at = NOW() WHERE id = $2`, entity, field, field)
	result, err := tx.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("adjust %s.%s: %w", entity, field, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		// The parent row vanished mid-transaction; the caller must roll back.
		if entity == EntityPost {
			return model.ErrPostNotFound
		}
		return model.ErrUserNotFound
	}
	return nil
}

func (l *counterLedger) ReadPostCounters(ctx context.Context, postID int64) (int, int, error) {
	var counts struct {
		LikeCount    int `db:"like_count"`
		CommentCount int `db:"comment_count"`
	}
	err := l.db.GetContext(ctx, &counts, `SELECT like_count, comment_count FROM posts WHERE id = $1`, postID)
	if err == sql.ErrNoRows {
		return 0, 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("read post counters: %w", err)
	}
	return counts.LikeCount, counts.CommentCount, nil
}

func (l *counterLedger) ReadUserCounters(ctx context.Context, userID int64) (int, int, int, error) {
	var counts struct {
		Followers int `db:"followers_count"`
		Following int `db:"following_count"`
		Posts     int `db:"post_count"`
	}
	err := l.db.GetContext(ctx, &counts, `SELECT followers_count, following_count, post_count FROM users WHERE id = $1`, userID)
	if err == sql.ErrNoRows {
		return 0, 0, 0, model.ErrUserNotFound
	}
	if err != nil {
		return 0, 0, 0, fmt.Errorf("read user counters: %w", err)
	}
	return counts.Followers, counts.Following, counts.Posts, nil
}
