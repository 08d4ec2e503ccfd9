package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"network/internal/model"
	"network/internal/pagination"
	"network/internal/repository"
)

// Feed view names
const (
	ViewAll       = "all"
	ViewFollowing = "following"
	ViewProfile   = "profile"
)

// FeedQuery describes one page request.
type FeedQuery struct {
	View      string
	ProfileID *int64            // target user for the profile view
	ViewerID  *int64            // authenticated requester, nil when anonymous
	Cursor    pagination.Cursor // zero for a first-page request
}

// FeedService assembles feed pages: it resolves the view into a base post
// set, runs the keyset paginator over it, and annotates the final page with
// the viewer's like status. It never mutates state and is safe to call
// concurrently with writes; a page may reflect a snapshot that is stale by
// the time it is rendered.
type FeedService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

func NewFeedService(postRepo repository.PostRepository, userRepo repository.UserRepository) *FeedService {
	return &FeedService{postRepo: postRepo, userRepo: userRepo}
}

// GetPage returns one feed page for the query.
//
// View dispatch happens before pagination: an unknown view, an anonymous
// `following` request, and a `profile` request naming a missing user are all
// rejected here, short-circuiting the paginator entirely.
func (s *FeedService) GetPage(ctx context.Context, q FeedQuery) (*model.FeedPage, error) {
	startTime := time.Now()

	filter, err := s.resolveFilter(ctx, q)
	if err != nil {
		return nil, err
	}

	// Fetch one row beyond the page size; the overflow row only signals
	// whether a next page exists.
	fetched, err := s.postRepo.ListFeed(ctx, filter, q.Cursor, pagination.PageSize+1)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}

	posts, hasNext := pagination.Trim(fetched, pagination.PageSize)

	if err := s.annotate(ctx, posts, q.ViewerID); err != nil {
		return nil, err
	}

	if posts == nil {
		posts = []model.FeedPost{}
	}

	log.Printf("[FeedService] GetPage OK: view=%s posts=%d hasNext=%t duration=%v",
		q.View, len(posts), hasNext, time.Since(startTime))

	return &model.FeedPage{Posts: posts, HasNext: hasNext}, nil
}

func (s *FeedService) resolveFilter(ctx context.Context, q FeedQuery) (repository.FeedFilter, error) {
	switch q.View {
	case ViewAll:
		return repository.FeedFilter{}, nil

	case ViewFollowing:
		if q.ViewerID == nil {
			return repository.FeedFilter{}, model.ErrNotAuthenticated
		}
		return repository.FeedFilter{FollowerID: q.ViewerID}, nil

	case ViewProfile:
		if q.ProfileID == nil {
			return repository.FeedFilter{}, model.ErrUserNotFound
		}
		if _, err := s.userRepo.GetByID(ctx, *q.ProfileID); err != nil {
			return repository.FeedFilter{}, err
		}
		return repository.FeedFilter{AuthorID: q.ProfileID}, nil

	default:
		return repository.FeedFilter{}, model.ErrViewNotFound
	}
}

// annotate fills the per-viewer fields on the returned page only. The liked
// flag is computed with one batch query over the page's ids; it is never
// cached or denormalized. Anonymous viewers keep liked=false with no lookup.
func (s *FeedService) annotate(ctx context.Context, posts []model.FeedPost, viewerID *int64) error {
	if viewerID == nil || len(posts) == 0 {
		return nil
	}

	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	liked, err := s.postRepo.CheckLikes(ctx, *viewerID, postIDs)
	if err != nil {
		return fmt.Errorf("check likes: %w", err)
	}

	for i := range posts {
		posts[i].Liked = liked[posts[i].ID]
		posts[i].UserIsAuthor = posts[i].UserID == *viewerID
	}
	return nil
}
