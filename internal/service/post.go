package service

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"

	"network/internal/cache"
	"network/internal/model"
	"network/internal/repository"
)

// PostService handles post creation, editing, deletion, and likes.
type PostService struct {
	withinTx repository.TxFunc
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	ledger   repository.CounterLedger
	engine   *ToggleEngine
	likeEdge Edge
	profiles cache.ProfileCache
}

func NewPostService(
	withinTx repository.TxFunc,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
	ledger repository.CounterLedger,
	engine *ToggleEngine,
	profiles cache.ProfileCache,
) *PostService {
	return &PostService{
		withinTx: withinTx,
		postRepo: postRepo,
		userRepo: userRepo,
		ledger:   ledger,
		engine:   engine,
		likeEdge: LikeEdge(likeRepo),
		profiles: profiles,
	}
}

// Create validates the content and inserts the post together with the
// author's post_count adjustment in one transaction.
func (s *PostService) Create(ctx context.Context, userID int64, req *model.CreatePostRequest) (*model.FeedPost, error) {
	content, err := model.ValidateContent(req.Content, model.MaxPostContentLength)
	if err != nil {
		return nil, err
	}

	var post *model.Post
	err = s.withinTx(ctx, func(tx *sqlx.Tx) error {
		created, err := s.postRepo.Create(ctx, tx, userID, content)
		if err != nil {
			return err
		}
		if err := s.ledger.Adjust(ctx, tx, repository.EntityUser, userID, repository.FieldPostCount, 1); err != nil {
			return err
		}
		post = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProfile(ctx, userID)

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	log.Printf("[PostService] Create OK: post=%d user=%d", post.ID, userID)
	return &model.FeedPost{
		Post:           *post,
		Username:       author.Username,
		AvatarThumbURL: author.AvatarThumbURL,
		UserIsAuthor:   true,
	}, nil
}

// Edit replaces the post's content. Only the owner may edit.
func (s *PostService) Edit(ctx context.Context, postID, userID int64, content string) (*model.Post, error) {
	trimmed, err := model.ValidateContent(content, model.MaxPostContentLength)
	if err != nil {
		return nil, err
	}
	return s.postRepo.UpdateContent(ctx, postID, userID, trimmed)
}

// Delete removes the post and decrements the owner's post_count atomically.
func (s *PostService) Delete(ctx context.Context, postID, userID int64) error {
	err := s.withinTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.postRepo.Delete(ctx, tx, postID, userID); err != nil {
			return err
		}
		return s.ledger.Adjust(ctx, tx, repository.EntityUser, userID, repository.FieldPostCount, -1)
	})
	if err != nil {
		return err
	}

	s.invalidateProfile(ctx, userID)
	log.Printf("[PostService] Delete OK: post=%d user=%d", postID, userID)
	return nil
}

// ToggleLike flips the viewer's like on a post and returns the new state
// with the post's authoritative like count re-read after commit.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID int64) (*model.LikeResult, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	liked, err := s.engine.Toggle(ctx, s.likeEdge, userID, postID)
	if err != nil {
		return nil, err
	}

	likeCount, _, err := s.ledger.ReadPostCounters(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &model.LikeResult{Liked: liked, LikeCount: likeCount}, nil
}

// invalidateProfile drops the cached profile after a post_count change.
// Best-effort: the TTL bounds staleness if Redis is unreachable.
func (s *PostService) invalidateProfile(ctx context.Context, userID int64) {
	if err := s.profiles.Invalidate(ctx, userID); err != nil {
		log.Printf("[PostService] profile cache invalidate failed: user=%d err=%v", userID, err)
	}
}
