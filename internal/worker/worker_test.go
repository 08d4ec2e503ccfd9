package worker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"network/internal/queue"
	"network/internal/storage"
	"network/internal/worker"
)

// mockRemover records deletes and fails selected keys.
type mockRemover struct {
	removed  []string
	failures map[string]error
}

func newMockRemover() *mockRemover {
	return &mockRemover{failures: make(map[string]error)}
}

func (m *mockRemover) Remove(ctx context.Context, key string) error {
	if err, ok := m.failures[key]; ok {
		return err
	}
	m.removed = append(m.removed, key)
	return nil
}

func TestHandler_AvatarReplacedDeletesAllKeys(t *testing.T) {
	remover := newMockRemover()
	h := worker.NewHandler(remover)

	event := queue.NewAvatarReplacedEvent(1, []string{"avatars/a.jpg", "avatars/a_thumb.jpg"})
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(remover.removed) != 2 {
		t.Errorf("removed = %v, want both keys", remover.removed)
	}
}

func TestHandler_PermissionDeniedIsSwallowed(t *testing.T) {
	remover := newMockRemover()
	remover.failures["avatars/locked.jpg"] = fmt.Errorf("delete avatars/locked.jpg: %w", storage.ErrPermissionDenied)
	h := worker.NewHandler(remover)

	event := queue.NewAvatarReplacedEvent(1, []string{"avatars/locked.jpg", "avatars/free.jpg"})
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("permission denied must not fail the batch, got: %v", err)
	}

	// The remaining key is still deleted
	if len(remover.removed) != 1 || remover.removed[0] != "avatars/free.jpg" {
		t.Errorf("removed = %v, want the unprotected key only", remover.removed)
	}
}

func TestHandler_OtherErrorsAreReported(t *testing.T) {
	remover := newMockRemover()
	remover.failures["avatars/a.jpg"] = errors.New("connection reset")
	h := worker.NewHandler(remover)

	event := queue.NewAvatarReplacedEvent(1, []string{"avatars/a.jpg"})
	if err := h.HandleEvent(context.Background(), event); err == nil {
		t.Fatal("expected error for non-permission failure")
	}
}

func TestHandler_UnknownEventType(t *testing.T) {
	h := worker.NewHandler(newMockRemover())

	err := h.HandleEvent(context.Background(), queue.CleanupEvent{Type: "mystery"})
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
}
