package model

import (
	"errors"
	"time"
)

// Follow is a directed follower->followee edge. Its existence is the single
// source of truth for both users' follower/following counters.
type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FolloweeID int64     `db:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Like is a directed user->post edge backing the post's like_count.
type Like struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	PostID    int64     `db:"post_id" json:"post_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FollowResult carries the toggle outcome and the target's authoritative
// post-commit follower count.
type FollowResult struct {
	Follow         bool `json:"follow"`
	FollowersCount int  `json:"followers_count"`
}

var (
	// ErrCannotFollowSelf rejects self-follow before any state is touched
	ErrCannotFollowSelf = errors.New("you cannot follow yourself")

	// ErrToggleConflict is returned when a concurrent toggle wins the insert
	// race; the transaction is rolled back with no counter drift.
	ErrToggleConflict = errors.New("concurrent toggle detected")
)
