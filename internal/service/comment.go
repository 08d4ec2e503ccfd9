package service

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"

	"network/internal/model"
	"network/internal/repository"
)

// CommentService handles comments and the comment_count they maintain.
type CommentService struct {
	withinTx    repository.TxFunc
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	ledger      repository.CounterLedger
}

func NewCommentService(
	withinTx repository.TxFunc,
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	ledger repository.CounterLedger,
) *CommentService {
	return &CommentService{
		withinTx:    withinTx,
		commentRepo: commentRepo,
		postRepo:    postRepo,
		ledger:      ledger,
	}
}

// Create validates the content and inserts the comment together with the
// post's comment_count increment in one transaction. Returns the comment
// and the authoritative count re-read after commit.
func (s *CommentService) Create(ctx context.Context, postID, userID int64, req *model.CreateCommentRequest) (*model.Comment, int, error) {
	content, err := model.ValidateContent(req.Content, model.MaxCommentContentLength)
	if err != nil {
		return nil, 0, err
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, model.ErrPostNotFound
	}

	var comment *model.Comment
	err = s.withinTx(ctx, func(tx *sqlx.Tx) error {
		created, err := s.commentRepo.Create(ctx, tx, postID, userID, content)
		if err != nil {
			return err
		}
		if err := s.ledger.Adjust(ctx, tx, repository.EntityPost, postID, repository.FieldCommentCount, 1); err != nil {
			return err
		}
		comment = created
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	_, commentCount, err := s.ledger.ReadPostCounters(ctx, postID)
	if err != nil {
		return nil, 0, err
	}

	log.Printf("[CommentService] Create OK: comment=%d post=%d user=%d", comment.ID, postID, userID)
	comment.UserIsAuthor = true
	return comment, commentCount, nil
}

// List returns all comments on a post, newest first, with the viewer's
// authorship flags and the post's current comment count.
func (s *CommentService) List(ctx context.Context, postID int64, viewerID *int64) (*model.CommentList, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		for i := range comments {
			comments[i].UserIsAuthor = comments[i].UserID == *viewerID
		}
	}

	_, commentCount, err := s.ledger.ReadPostCounters(ctx, postID)
	if err != nil {
		return nil, err
	}

	if comments == nil {
		comments = []model.Comment{}
	}
	return &model.CommentList{Comments: comments, CommentCount: commentCount}, nil
}

// Edit replaces the comment's content. Only the owner may edit.
func (s *CommentService) Edit(ctx context.Context, commentID, userID int64, content string) (*model.Comment, error) {
	trimmed, err := model.ValidateContent(content, model.MaxCommentContentLength)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.Update(ctx, commentID, userID, trimmed)
	if err != nil {
		return nil, err
	}
	comment.UserIsAuthor = true
	return comment, nil
}

// Delete removes the comment and decrements its post's comment_count
// atomically. Returns the post's authoritative count after commit.
func (s *CommentService) Delete(ctx context.Context, commentID, userID int64) (int, error) {
	var postID int64
	err := s.withinTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.commentRepo.Delete(ctx, tx, commentID, userID)
		if err != nil {
			return err
		}
		postID = id
		return s.ledger.Adjust(ctx, tx, repository.EntityPost, postID, repository.FieldCommentCount, -1)
	})
	if err != nil {
		return 0, err
	}

	_, commentCount, err := s.ledger.ReadPostCounters(ctx, postID)
	if err != nil {
		return 0, err
	}

	log.Printf("[CommentService] Delete OK: comment=%d post=%d user=%d", commentID, postID, userID)
	return commentCount, nil
}
