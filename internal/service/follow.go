package service

import (
	"context"
	"log"

	"network/internal/cache"
	"network/internal/model"
	"network/internal/repository"
)

// FollowService handles follow toggles and the two user counters they back.
type FollowService struct {
	userRepo   repository.UserRepository
	engine     *ToggleEngine
	followEdge Edge
	ledger     repository.CounterLedger
	profiles   cache.ProfileCache
}

func NewFollowService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	engine *ToggleEngine,
	ledger repository.CounterLedger,
	profiles cache.ProfileCache,
) *FollowService {
	return &FollowService{
		userRepo:   userRepo,
		engine:     engine,
		followEdge: FollowEdge(followRepo),
		ledger:     ledger,
		profiles:   profiles,
	}
}

// Toggle flips whether follower follows followee. Self-follow is rejected
// before any state is touched. Returns the new state with the followee's
// authoritative follower count re-read after commit.
func (s *FollowService) Toggle(ctx context.Context, followerID, followeeID int64) (*model.FollowResult, error) {
	if followerID == followeeID {
		return nil, model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return nil, err
	}

	following, err := s.engine.Toggle(ctx, s.followEdge, followerID, followeeID)
	if err != nil {
		return nil, err
	}

	// Both users' counters changed; drop both cached profiles.
	if err := s.profiles.Invalidate(ctx, followerID, followeeID); err != nil {
		log.Printf("[FollowService] profile cache invalidate failed: err=%v", err)
	}

	followers, _, _, err := s.ledger.ReadUserCounters(ctx, followeeID)
	if err != nil {
		return nil, err
	}

	return &model.FollowResult{Follow: following, FollowersCount: followers}, nil
}
