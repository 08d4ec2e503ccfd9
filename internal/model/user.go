package model

import (
	"errors"
	"time"
)

// User represents a user in the system
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"-"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	AvatarURL      *string   `db:"avatar_url" json:"avatar_url"`
	AvatarKey      *string   `db:"avatar_key" json:"-"`
	AvatarThumbURL *string   `db:"avatar_thumb_url" json:"avatar_thumb_url"`
	AvatarThumbKey *string   `db:"avatar_thumb_key" json:"-"`
	FollowersCount int       `db:"followers_count" json:"followers_count"`
	FollowingCount int       `db:"following_count" json:"following_count"`
	PostCount      int       `db:"post_count" json:"post_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary is the author/display projection embedded in posts and comments.
type UserSummary struct {
	ID             int64   `db:"id" json:"id"`
	Username       string  `db:"username" json:"username"`
	AvatarThumbURL *string `db:"avatar_thumb_url" json:"profile_picture"`
}

// Profile is the public profile payload, served directly or from the profile cache.
type Profile struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	AvatarURL      *string `json:"profile_picture"`
	FollowersCount int     `json:"followers"`
	FollowingCount int     `json:"following"`
	PostCount      int     `json:"post_count"`
	Follow         bool    `json:"follow"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Avatar constraints
const (
	AvatarThumbSize    = 100 // 100x100 thumbnail for post/comment author display
	MaxAvatarSizeBytes = 5 * 1024 * 1024
	AvatarFolder       = "avatars"
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when the username is taken (case-insensitive)
	ErrUsernameExists = errors.New("username already in use")

	// ErrEmailExists is returned when the email is taken (case-insensitive)
	ErrEmailExists = errors.New("email already in use")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid username and/or password")

	// ErrUsernameTooShort is returned at registration for usernames under 3 characters
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")

	// ErrPasswordTooShort is returned at registration for passwords under 8 characters
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrEmailRequired is returned at registration when the email is missing
	ErrEmailRequired = errors.New("email is required")

	// ErrNotAuthenticated is returned when an operation requires an
	// authenticated requester and none is present
	ErrNotAuthenticated = errors.New("user not authenticated")

	// ErrInvalidImage is returned for uploads that are not decodable jpeg/png
	ErrInvalidImage = errors.New("invalid image file")

	// ErrImageTooLarge is returned for uploads over MaxAvatarSizeBytes
	ErrImageTooLarge = errors.New("image too big")
)
