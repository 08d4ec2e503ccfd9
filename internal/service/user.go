package service

import (
	"context"
	"log"
	"mime/multipart"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"network/internal/cache"
	"network/internal/model"
	"network/internal/queue"
	"network/internal/repository"
	"network/internal/storage"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

// AvatarUploader abstracts the storage layer for avatar uploads so the
// service can be tested without an S3 client.
type AvatarUploader interface {
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*storage.UploadResult, error)
}

// UserService handles registration, login, profiles, and avatars.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	profiles   cache.ProfileCache
	avatars    AvatarUploader
	publisher  queue.Publisher
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	profiles cache.ProfileCache,
	avatars AvatarUploader,
	publisher queue.Publisher,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		profiles:   profiles,
		avatars:    avatars,
		publisher:  publisher,
	}
}

// Register validates the request, hashes the password, and creates the user.
// Username and email uniqueness are case-insensitive.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if len(username) < minUsernameLength {
		return nil, model.ErrUsernameTooShort
	}
	if email == "" {
		return nil, model.ErrEmailRequired
	}
	if len(req.Password) < minPasswordLength {
		return nil, model.ErrPasswordTooShort
	}

	if taken, err := s.userRepo.ExistsByUsername(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, model.ErrUsernameExists
	}
	if taken, err := s.userRepo.ExistsByEmail(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, model.ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       username,
		Email:          email,
		PasswordHashed: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[UserService] Register OK: user=%d username=%s", user.ID, user.Username)
	return user, nil
}

// Login verifies the credentials and returns the user. Both a missing user
// and a wrong password map to the same error.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID returns the user by id.
func (s *UserService) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetProfile returns a user's public profile. The viewer-independent part
// is served from the profile cache when warm; the per-viewer follow flag is
// resolved fresh on every call.
func (s *UserService) GetProfile(ctx context.Context, userID int64, viewerID *int64) (*model.Profile, error) {
	profile, found, err := s.profiles.Get(ctx, userID)
	if err != nil {
		// Degrade to the database rather than failing the request
		log.Printf("[UserService] profile cache get failed: user=%d err=%v", userID, err)
		found = false
	}

	if !found {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		profile = &model.Profile{
			ID:             user.ID,
			Username:       user.Username,
			AvatarURL:      user.AvatarURL,
			FollowersCount: user.FollowersCount,
			FollowingCount: user.FollowingCount,
			PostCount:      user.PostCount,
		}
		if err := s.profiles.Set(ctx, userID, profile); err != nil {
			log.Printf("[UserService] profile cache set failed: user=%d err=%v", userID, err)
		}
	}

	profile.Follow = false
	if viewerID != nil && *viewerID != userID {
		following, err := s.followRepo.Exists(ctx, *viewerID, userID)
		if err != nil {
			return nil, err
		}
		profile.Follow = following
	}

	return profile, nil
}

// UpdateAvatar stores the new avatar pair, swaps the user's references, and
// schedules deletion of the replaced objects after the swap has committed.
func (s *UserService) UpdateAvatar(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (*model.User, error) {
	uploaded, err := s.avatars.Upload(ctx, file, header)
	if err != nil {
		return nil, err
	}

	oldKey, oldThumbKey, err := s.userRepo.UpdateAvatar(ctx, userID, uploaded.URL, uploaded.Key, uploaded.ThumbURL, uploaded.ThumbKey)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.Invalidate(ctx, userID); err != nil {
		log.Printf("[UserService] profile cache invalidate failed: user=%d err=%v", userID, err)
	}

	var orphaned []string
	if oldKey != nil && *oldKey != "" {
		orphaned = append(orphaned, *oldKey)
	}
	if oldThumbKey != nil && *oldThumbKey != "" {
		orphaned = append(orphaned, *oldThumbKey)
	}
	if len(orphaned) > 0 {
		event := queue.NewAvatarReplacedEvent(userID, orphaned)
		if _, err := s.publisher.Publish(ctx, queue.StreamCleanup, event); err != nil {
			// Worst case is an orphan object in the bucket
			log.Printf("[UserService] cleanup publish failed: user=%d err=%v", userID, err)
		}
	}

	return s.userRepo.GetByID(ctx, userID)
}
