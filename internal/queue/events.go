package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the cleanup stream
const (
	EventAvatarReplaced = "avatar_replaced"
)

// Stream names
const (
	StreamCleanup = "stream:cleanup"
)

// Consumer group name for cleanup workers
const (
	ConsumerGroupCleanup = "cleanup_workers"
)

// CleanupEvent is published after a replacing write commits. It names the
// storage objects the committed row no longer references; the worker deletes
// them so replaced files do not pile up as orphans.
type CleanupEvent struct {
	Type      string   `json:"type"`
	Timestamp int64    `json:"timestamp"` // Unix timestamp when the event occurred
	UserID    int64    `json:"user_id"`
	Keys      []string `json:"keys"` // storage object keys to delete
}

// NewAvatarReplacedEvent creates the cleanup event for a replaced avatar.
func NewAvatarReplacedEvent(userID int64, oldKeys []string) CleanupEvent {
	return CleanupEvent{
		Type:      EventAvatarReplaced,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
		Keys:      oldKeys,
	}
}

// ToMap serializes the event into the flat field map XADD expects.
func (e CleanupEvent) ToMap() (map[string]interface{}, error) {
	keys, err := json.Marshal(e.Keys)
	if err != nil {
		return nil, fmt.Errorf("marshal keys: %w", err)
	}
	return map[string]interface{}{
		"type":      e.Type,
		"timestamp": e.Timestamp,
		"user_id":   e.UserID,
		"keys":      string(keys),
	}, nil
}

// EventFromMap parses a stream entry's values back into a CleanupEvent.
func EventFromMap(values map[string]interface{}) (CleanupEvent, error) {
	var e CleanupEvent

	s, ok := values["type"].(string)
	if !ok {
		return e, fmt.Errorf("event missing type field")
	}
	e.Type = s

	if s, ok := values["timestamp"].(string); ok {
		fmt.Sscanf(s, "%d", &e.Timestamp)
	}
	if s, ok := values["user_id"].(string); ok {
		fmt.Sscanf(s, "%d", &e.UserID)
	}
	if s, ok := values["keys"].(string); ok {
		if err := json.Unmarshal([]byte(s), &e.Keys); err != nil {
			return e, fmt.Errorf("unmarshal keys: %w", err)
		}
	}

	return e, nil
}
