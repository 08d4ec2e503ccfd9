package worker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"network/internal/queue"
	"network/internal/storage"
)

// ObjectRemover deletes a stored object by key. Abstracts the storage
// layer so workers can be tested without an S3 client.
type ObjectRemover interface {
	Remove(ctx context.Context, key string) error
}

// Handler processes cleanup events from the queue.
type Handler struct {
	store ObjectRemover
}

// NewHandler creates a new event handler.
func NewHandler(store ObjectRemover) *Handler {
	return &Handler{store: store}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.CleanupEvent) error {
	switch event.Type {
	case queue.EventAvatarReplaced:
		return h.handleAvatarReplaced(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

// handleAvatarReplaced deletes the storage objects left behind after a
// user uploaded a new avatar. Permission errors from the bucket are
// logged and skipped so a restrictive policy never fails the batch.
func (h *Handler) handleAvatarReplaced(ctx context.Context, event queue.CleanupEvent) error {
	log.Printf("[Worker] AvatarReplaced: user=%d keys=%d", event.UserID, len(event.Keys))

	var failed int
	for _, key := range event.Keys {
		err := h.store.Remove(ctx, key)
		if err == nil {
			continue
		}
		if errors.Is(err, storage.ErrPermissionDenied) {
			log.Printf("[Worker] AvatarReplaced: no permission to delete key=%s, skipping", key)
			continue
		}
		log.Printf("[Worker] AvatarReplaced: failed to delete key=%s err=%v", key, err)
		failed++
	}

	if failed > 0 {
		return fmt.Errorf("avatar cleanup: %d of %d deletes failed", failed, len(event.Keys))
	}
	return nil
}
