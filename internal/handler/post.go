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

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// Create handles POST /posts
// Creates a new post for the authenticated user.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrContentRequired):
			httputil.WriteBadRequest(w, "Content cannot be empty")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, "Content too long (max 250 characters)")
		default:
			log.Printf("[ERROR] Create post handler: user=%d err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to create post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Update handles PUT and DELETE /posts/{id}
// The body selects the action: like, edit, or delete. A bodyless DELETE
// defaults to the delete action.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req model.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Action == "" && r.Method == http.MethodDelete {
		req.Action = model.ActionDelete
	}

	switch req.Action {
	case model.ActionLike:
		result, err := h.postService.ToggleLike(r.Context(), userID, postID)
		if err != nil {
			h.writeActionError(w, "like", postID, userID, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)

	case model.ActionEdit:
		post, err := h.postService.Edit(r.Context(), postID, userID, req.Content)
		if err != nil {
			h.writeActionError(w, "edit", postID, userID, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, post)

	case model.ActionDelete:
		if err := h.postService.Delete(r.Context(), postID, userID); err != nil {
			h.writeActionError(w, "delete", postID, userID, err)
			return
		}
		httputil.WriteNoContent(w)

	default:
		httputil.WriteBadRequest(w, "Invalid action")
	}
}

func (h *PostHandler) writeActionError(w http.ResponseWriter, action string, postID, userID int64, err error) {
	switch {
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrNotPostOwner):
		httputil.WriteForbidden(w, "You do not own this post")
	case errors.Is(err, model.ErrContentRequired):
		httputil.WriteBadRequest(w, "Content cannot be empty")
	case errors.Is(err, model.ErrContentTooLong):
		httputil.WriteBadRequest(w, "Content too long (max 250 characters)")
	case errors.Is(err, model.ErrToggleConflict):
		httputil.WriteConflict(w, "Concurrent update detected, please retry")
	default:
		log.Printf("[ERROR] %s post handler: post=%d user=%d err=%v", action, postID, userID, err)
		httputil.WriteInternalError(w, "Failed to update post")
	}
}
