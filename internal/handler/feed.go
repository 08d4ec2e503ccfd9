package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"network/internal/httputil"
	"network/internal/model"
	"network/internal/pagination"
	"network/internal/service"
	"network/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// FirstPage handles GET /feed/{view}
// Serves the newest page of the view. An empty first page is a normal 200.
func (h *FeedHandler) FirstPage(w http.ResponseWriter, r *http.Request) {
	q, ok := h.buildQuery(w, r)
	if !ok {
		return
	}

	page, err := h.feedService.GetPage(r.Context(), q)
	if err != nil {
		h.writeFeedError(w, q.View, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// More handles GET /feed/{view}/more?timestamp=&post_id=
// Serves the page strictly after the cursor. A continuation that lands past
// the end returns 204 so clients know to stop paging.
func (h *FeedHandler) More(w http.ResponseWriter, r *http.Request) {
	q, ok := h.buildQuery(w, r)
	if !ok {
		return
	}

	cursor, err := pagination.Parse(r.URL.Query().Get("timestamp"), r.URL.Query().Get("post_id"))
	if err != nil {
		httputil.WriteBadRequest(w, "Malformed pagination cursor")
		return
	}
	q.Cursor = cursor

	page, err := h.feedService.GetPage(r.Context(), q)
	if err != nil {
		h.writeFeedError(w, q.View, err)
		return
	}

	if len(page.Posts) == 0 {
		httputil.WriteNoContent(w)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *FeedHandler) buildQuery(w http.ResponseWriter, r *http.Request) (service.FeedQuery, bool) {
	q := service.FeedQuery{View: chi.URLParam(r, "view")}

	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		q.ViewerID = &id
	}

	if userIDStr := r.URL.Query().Get("user_id"); userIDStr != "" {
		profileID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid user ID")
			return q, false
		}
		q.ProfileID = &profileID
	}

	return q, true
}

func (h *FeedHandler) writeFeedError(w http.ResponseWriter, view string, err error) {
	switch {
	case errors.Is(err, model.ErrViewNotFound):
		httputil.WriteNotFound(w, "Filter not found")
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	case errors.Is(err, model.ErrNotAuthenticated):
		httputil.WriteUnauthorized(w, "Authentication required")
	default:
		log.Printf("[ERROR] Feed handler: view=%s err=%v", view, err)
		httputil.WriteInternalError(w, "Failed to load feed")
	}
}
