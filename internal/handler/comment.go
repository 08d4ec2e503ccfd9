package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"network/internal/httputil"
	"network/internal/model"
	"network/internal/service"
	"network/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// commentResponse pairs a comment with its post's authoritative count.
type commentResponse struct {
	Comment      *model.Comment `json:"comment"`
	CommentCount int            `json:"commentCount"`
}

// Create handles POST /posts/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, count, err := h.commentService.Create(r.Context(), postID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrContentRequired):
			httputil.WriteBadRequest(w, "Content cannot be empty")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, "Content too long (max 100 characters)")
		default:
			log.Printf("[ERROR] Create comment handler: post=%d user=%d err=%v", postID, userID, err)
			httputil.WriteInternalError(w, "Failed to create comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, commentResponse{Comment: comment, CommentCount: count})
}

// List handles GET /posts/{id}/comments
// Returns all comments on the post, newest first.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	list, err := h.commentService.List(r.Context(), postID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] List comments handler: post=%d err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to list comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, list)
}

// Update handles PUT and DELETE /comments/{id}
// The body selects the action: edit or delete. A bodyless DELETE defaults
// to the delete action.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	var req model.UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Action == "" && r.Method == http.MethodDelete {
		req.Action = model.ActionDelete
	}

	switch req.Action {
	case model.ActionEdit:
		comment, err := h.commentService.Edit(r.Context(), commentID, userID, req.Content)
		if err != nil {
			h.writeActionError(w, "edit", commentID, userID, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, comment)

	case model.ActionDelete:
		count, err := h.commentService.Delete(r.Context(), commentID, userID)
		if err != nil {
			h.writeActionError(w, "delete", commentID, userID, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]int{"commentCount": count})

	default:
		httputil.WriteBadRequest(w, "Invalid action")
	}
}

func (h *CommentHandler) writeActionError(w http.ResponseWriter, action string, commentID, userID int64, err error) {
	switch {
	case errors.Is(err, model.ErrCommentNotFound):
		httputil.WriteNotFound(w, "Comment not found")
	case errors.Is(err, model.ErrNotCommentOwner):
		httputil.WriteForbidden(w, "You do not own this comment")
	case errors.Is(err, model.ErrContentRequired):
		httputil.WriteBadRequest(w, "Content cannot be empty")
	case errors.Is(err, model.ErrContentTooLong):
		httputil.WriteBadRequest(w, "Content too long (max 100 characters)")
	default:
		log.Printf("[ERROR] %s comment handler: comment=%d user=%d err=%v", action, commentID, userID, err)
		httputil.WriteInternalError(w, "Failed to update comment")
	}
}
