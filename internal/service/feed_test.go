package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"network/internal/model"
	"network/internal/pagination"
	"network/internal/repository"
)

// makeFeedPosts builds n posts in (created_at DESC, id DESC) order, one
// minute apart, newest first.
func makeFeedPosts(n int) []model.FeedPost {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]model.FeedPost, n)
	for i := 0; i < n; i++ {
		id := int64(n - i)
		posts[i] = model.FeedPost{
			Post: model.Post{
				ID:        id,
				UserID:    id%3 + 1,
				Content:   "post",
				CreatedAt: base.Add(-time.Duration(i) * time.Minute),
			},
			Username: "someone",
		}
	}
	return posts
}

// keysetListFeed simulates the repository's keyset scan over a pre-sorted
// slice: rows strictly after the cursor, up to limit.
func keysetListFeed(posts []model.FeedPost) func(context.Context, repository.FeedFilter, pagination.Cursor, int) ([]model.FeedPost, error) {
	return func(ctx context.Context, filter repository.FeedFilter, cursor pagination.Cursor, limit int) ([]model.FeedPost, error) {
		var out []model.FeedPost
		for _, p := range posts {
			if !cursor.IsZero() {
				before := p.CreatedAt.Before(cursor.Timestamp) ||
					(p.CreatedAt.Equal(cursor.Timestamp) && p.ID < cursor.ID)
				if !before {
					continue
				}
			}
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
		return out, nil
	}
}

func TestFeedService_FirstPage(t *testing.T) {
	postRepo := &mockPostRepository{listFeedFn: keysetListFeed(makeFeedPosts(30))}
	svc := NewFeedService(postRepo, &mockUserRepository{})

	page, err := svc.GetPage(context.Background(), FeedQuery{View: ViewAll})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(page.Posts) != pagination.PageSize {
		t.Errorf("posts = %d, want %d", len(page.Posts), pagination.PageSize)
	}
	if !page.HasNext {
		t.Error("expected hasNext with 30 posts available")
	}
	if page.Posts[0].ID != 30 {
		t.Errorf("first post id = %d, want 30 (newest)", page.Posts[0].ID)
	}
}

func TestFeedService_WalkAllPages(t *testing.T) {
	posts := makeFeedPosts(30)
	postRepo := &mockPostRepository{listFeedFn: keysetListFeed(posts)}
	svc := NewFeedService(postRepo, &mockUserRepository{})

	seen := make(map[int64]bool)
	cursor := pagination.Cursor{}

	for pageNum := 1; ; pageNum++ {
		page, err := svc.GetPage(context.Background(), FeedQuery{View: ViewAll, Cursor: cursor})
		if err != nil {
			t.Fatalf("page %d: %v", pageNum, err)
		}

		for _, p := range page.Posts {
			if seen[p.ID] {
				t.Errorf("page %d: post %d served twice", pageNum, p.ID)
			}
			seen[p.ID] = true
		}

		if !page.HasNext {
			if pageNum != 3 {
				t.Errorf("feed ended after %d pages, want 3", pageNum)
			}
			break
		}

		last := page.Posts[len(page.Posts)-1]
		cursor = pagination.Cursor{Timestamp: last.CreatedAt, ID: last.ID}
	}

	if len(seen) != 30 {
		t.Errorf("saw %d distinct posts, want 30", len(seen))
	}
}

func TestFeedService_TieBreakOnSharedTimestamp(t *testing.T) {
	// Five posts created in the same second; only the id orders them.
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var posts []model.FeedPost
	for id := int64(5); id >= 1; id-- {
		posts = append(posts, model.FeedPost{Post: model.Post{ID: id, UserID: 1, CreatedAt: ts}})
	}
	// Pad older posts so the shared-timestamp group spans a page boundary.
	older := makeFeedPosts(8)
	for i := range older {
		older[i].CreatedAt = ts.Add(-time.Hour).Add(-time.Duration(i) * time.Minute)
	}
	posts = append(posts, older...)

	postRepo := &mockPostRepository{listFeedFn: keysetListFeed(posts)}
	svc := NewFeedService(postRepo, &mockUserRepository{})

	first, err := svc.GetPage(context.Background(), FeedQuery{View: ViewAll})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	for i := 0; i < 5; i++ {
		if first.Posts[i].ID != int64(5-i) {
			t.Errorf("pos %d: id = %d, want %d", i, first.Posts[i].ID, 5-i)
		}
	}

	last := first.Posts[len(first.Posts)-1]
	second, err := svc.GetPage(context.Background(), FeedQuery{
		View:   ViewAll,
		Cursor: pagination.Cursor{Timestamp: last.CreatedAt, ID: last.ID},
	})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}

	for _, p := range second.Posts {
		for _, q := range first.Posts {
			if p.ID == q.ID {
				t.Errorf("post %d appears on both pages", p.ID)
			}
		}
	}
}

func TestFeedService_AnnotatesOnlyTheReturnedPage(t *testing.T) {
	viewerID := int64(2)
	postRepo := &mockPostRepository{
		listFeedFn: keysetListFeed(makeFeedPosts(30)),
		checkLikesFn: func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{30: true, 25: true}, nil
		},
	}
	svc := NewFeedService(postRepo, &mockUserRepository{})

	page, err := svc.GetPage(context.Background(), FeedQuery{View: ViewAll, ViewerID: &viewerID})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// The overflow row signalling hasNext must not be in the batch lookup
	if len(postRepo.checkLikesCalls) != 1 {
		t.Fatalf("CheckLikes calls = %d, want 1", len(postRepo.checkLikesCalls))
	}
	if len(postRepo.checkLikesCalls[0]) != pagination.PageSize {
		t.Errorf("CheckLikes batch size = %d, want %d", len(postRepo.checkLikesCalls[0]), pagination.PageSize)
	}

	for _, p := range page.Posts {
		wantLiked := p.ID == 30 || p.ID == 25
		if p.Liked != wantLiked {
			t.Errorf("post %d: liked = %t, want %t", p.ID, p.Liked, wantLiked)
		}
		wantAuthor := p.UserID == viewerID
		if p.UserIsAuthor != wantAuthor {
			t.Errorf("post %d: user_is_author = %t, want %t", p.ID, p.UserIsAuthor, wantAuthor)
		}
	}
}

func TestFeedService_AnonymousViewerSkipsLikeLookup(t *testing.T) {
	postRepo := &mockPostRepository{listFeedFn: keysetListFeed(makeFeedPosts(5))}
	svc := NewFeedService(postRepo, &mockUserRepository{})

	page, err := svc.GetPage(context.Background(), FeedQuery{View: ViewAll})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(postRepo.checkLikesCalls) != 0 {
		t.Errorf("CheckLikes calls = %d, want 0 for anonymous viewer", len(postRepo.checkLikesCalls))
	}
	for _, p := range page.Posts {
		if p.Liked {
			t.Errorf("post %d: liked should be false for anonymous viewer", p.ID)
		}
	}
}

func TestFeedService_FollowingRequiresViewer(t *testing.T) {
	svc := NewFeedService(&mockPostRepository{}, &mockUserRepository{})

	_, err := svc.GetPage(context.Background(), FeedQuery{View: ViewFollowing})
	if !errors.Is(err, model.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got: %v", err)
	}
}

func TestFeedService_ProfileViewMissingUser(t *testing.T) {
	profileID := int64(404)
	svc := NewFeedService(&mockPostRepository{}, &mockUserRepository{})

	_, err := svc.GetPage(context.Background(), FeedQuery{View: ViewProfile, ProfileID: &profileID})
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestFeedService_UnknownView(t *testing.T) {
	svc := NewFeedService(&mockPostRepository{}, &mockUserRepository{})

	_, err := svc.GetPage(context.Background(), FeedQuery{View: "trending"})
	if !errors.Is(err, model.ErrViewNotFound) {
		t.Fatalf("expected ErrViewNotFound, got: %v", err)
	}
}

func TestFeedService_EmptyFirstPage(t *testing.T) {
	svc := NewFeedService(&mockPostRepository{}, &mockUserRepository{})

	page, err := svc.GetPage(context.Background(), FeedQuery{View: ViewAll})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if page.Posts == nil {
		t.Error("posts should be an empty slice, not nil")
	}
	if len(page.Posts) != 0 || page.HasNext {
		t.Errorf("page = %+v, want empty with hasNext=false", page)
	}
}
