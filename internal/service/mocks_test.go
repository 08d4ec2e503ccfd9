package service

// Function-field mocks and in-memory fakes shared by the service tests.
// Services receive a TxFunc that hands the closure a nil transaction, so
// every repository call stays in memory.

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/jmoiron/sqlx"

	"network/internal/model"
	"network/internal/pagination"
	"network/internal/queue"
	"network/internal/repository"
	"network/internal/storage"
)

// testTx runs the transactional closure directly, with no database.
func testTx() repository.TxFunc {
	return func(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
		return fn(nil)
	}
}

// =============================================================================
// Edge store fake (stateful)
// =============================================================================

type edgeKey struct {
	actorID  int64
	targetID int64
}

type fakeEdgeStore struct {
	edges map[edgeKey]bool

	// insertConflict simulates a concurrent insert winning the race
	insertConflict bool

	insertCalls int
	deleteCalls int
}

func newFakeEdgeStore() *fakeEdgeStore {
	return &fakeEdgeStore{edges: make(map[edgeKey]bool)}
}

func (s *fakeEdgeStore) ExistsForUpdate(ctx context.Context, tx *sqlx.Tx, actorID, targetID int64) (bool, error) {
	return s.edges[edgeKey{actorID, targetID}], nil
}

func (s *fakeEdgeStore) Insert(ctx context.Context, tx *sqlx.Tx, actorID, targetID int64) (bool, error) {
	s.insertCalls++
	if s.insertConflict {
		return false, nil
	}
	s.edges[edgeKey{actorID, targetID}] = true
	return true, nil
}

func (s *fakeEdgeStore) Delete(ctx context.Context, tx *sqlx.Tx, actorID, targetID int64) error {
	s.deleteCalls++
	key := edgeKey{actorID, targetID}
	if !s.edges[key] {
		return model.ErrToggleConflict
	}
	delete(s.edges, key)
	return nil
}

// fakeFollowStore adds the unlocked read used for profile rendering.
type fakeFollowStore struct {
	*fakeEdgeStore
}

func (s *fakeFollowStore) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return s.edges[edgeKey{followerID, followeeID}], nil
}

// =============================================================================
// Counter ledger fake (stateful)
// =============================================================================

type adjustment struct {
	Entity repository.Entity
	ID     int64
	Field  repository.Field
	Delta  int
}

type counterKey struct {
	entity repository.Entity
	id     int64
	field  repository.Field
}

type fakeLedger struct {
	counters    map[counterKey]int
	adjustments []adjustment

	adjustErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{counters: make(map[counterKey]int)}
}

func (l *fakeLedger) Adjust(ctx context.Context, tx *sqlx.Tx, entity repository.Entity, id int64, field repository.Field, delta int) error {
	if l.adjustErr != nil {
		return l.adjustErr
	}
	l.adjustments = append(l.adjustments, adjustment{entity, id, field, delta})
	l.counters[counterKey{entity, id, field}] += delta
	return nil
}

func (l *fakeLedger) ReadPostCounters(ctx context.Context, postID int64) (int, int, error) {
	return l.counters[counterKey{repository.EntityPost, postID, repository.FieldLikeCount}],
		l.counters[counterKey{repository.EntityPost, postID, repository.FieldCommentCount}],
		nil
}

func (l *fakeLedger) ReadUserCounters(ctx context.Context, userID int64) (int, int, int, error) {
	return l.counters[counterKey{repository.EntityUser, userID, repository.FieldFollowersCount}],
		l.counters[counterKey{repository.EntityUser, userID, repository.FieldFollowingCount}],
		l.counters[counterKey{repository.EntityUser, userID, repository.FieldPostCount}],
		nil
}

func (l *fakeLedger) counter(entity repository.Entity, id int64, field repository.Field) int {
	return l.counters[counterKey{entity, id, field}]
}

// =============================================================================
// Repository mocks (function fields)
// =============================================================================

type mockPostRepository struct {
	createFn        func(ctx context.Context, tx *sqlx.Tx, userID int64, content string) (*model.Post, error)
	getByIDFn       func(ctx context.Context, postID int64) (*model.Post, error)
	updateContentFn func(ctx context.Context, postID, userID int64, content string) (*model.Post, error)
	deleteFn        func(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error
	listFeedFn      func(ctx context.Context, filter repository.FeedFilter, cursor pagination.Cursor, limit int) ([]model.FeedPost, error)
	checkLikesFn    func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
	existsFn        func(ctx context.Context, postID int64) (bool, error)

	checkLikesCalls [][]int64
}

func (m *mockPostRepository) Create(ctx context.Context, tx *sqlx.Tx, userID int64, content string) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, tx, userID, content)
	}
	return &model.Post{ID: 1, UserID: userID, Content: content, CreatedAt: time.Now()}, nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) UpdateContent(ctx context.Context, postID, userID int64, content string) (*model.Post, error) {
	if m.updateContentFn != nil {
		return m.updateContentFn(ctx, postID, userID, content)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) Delete(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, postID, userID)
	}
	return model.ErrPostNotFound
}

func (m *mockPostRepository) ListFeed(ctx context.Context, filter repository.FeedFilter, cursor pagination.Cursor, limit int) ([]model.FeedPost, error) {
	if m.listFeedFn != nil {
		return m.listFeedFn(ctx, filter, cursor, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	m.checkLikesCalls = append(m.checkLikesCalls, postIDs)
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, postIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return false, nil
}

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	updateAvatarFn     func(ctx context.Context, userID int64, url, key, thumbURL, thumbKey string) (*string, *string, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) UpdateAvatar(ctx context.Context, userID int64, url, key, thumbURL, thumbKey string) (*string, *string, error) {
	if m.updateAvatarFn != nil {
		return m.updateAvatarFn(ctx, userID, url, key, thumbURL, thumbKey)
	}
	return nil, nil, nil
}

type mockCommentRepository struct {
	createFn     func(ctx context.Context, tx *sqlx.Tx, postID, userID int64, content string) (*model.Comment, error)
	updateFn     func(ctx context.Context, commentID, userID int64, content string) (*model.Comment, error)
	deleteFn     func(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) (int64, error)
	listByPostFn func(ctx context.Context, postID int64) ([]model.Comment, error)
	getByIDFn    func(ctx context.Context, commentID int64) (*model.Comment, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, tx *sqlx.Tx, postID, userID int64, content string) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, tx, postID, userID, content)
	}
	return &model.Comment{ID: 1, PostID: postID, UserID: userID, Content: content, CreatedAt: time.Now()}, nil
}

func (m *mockCommentRepository) Update(ctx context.Context, commentID, userID int64, content string) (*model.Comment, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, commentID, userID, content)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) Delete(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, commentID, userID)
	}
	return 0, model.ErrCommentNotFound
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	if m.listByPostFn != nil {
		return m.listByPostFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

// =============================================================================
// Cache, publisher, and uploader fakes
// =============================================================================

type fakeProfileCache struct {
	profiles    map[int64]*model.Profile
	invalidated []int64
}

func newFakeProfileCache() *fakeProfileCache {
	return &fakeProfileCache{profiles: make(map[int64]*model.Profile)}
}

func (c *fakeProfileCache) Get(ctx context.Context, userID int64) (*model.Profile, bool, error) {
	p, ok := c.profiles[userID]
	if !ok {
		return nil, false, nil
	}
	copied := *p
	return &copied, true, nil
}

func (c *fakeProfileCache) Set(ctx context.Context, userID int64, profile *model.Profile) error {
	copied := *profile
	c.profiles[userID] = &copied
	return nil
}

func (c *fakeProfileCache) Invalidate(ctx context.Context, userIDs ...int64) error {
	for _, id := range userIDs {
		delete(c.profiles, id)
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

type fakePublisher struct {
	published []publishedEvent
}

type publishedEvent struct {
	Stream string
	Event  queue.CleanupEvent
}

func (p *fakePublisher) Publish(ctx context.Context, stream string, event queue.CleanupEvent) (string, error) {
	p.published = append(p.published, publishedEvent{Stream: stream, Event: event})
	return "1-0", nil
}

type fakeUploader struct {
	result *storage.UploadResult
	err    error
}

func (u *fakeUploader) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	return u.result, nil
}
