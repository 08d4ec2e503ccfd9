package queue

import (
	"fmt"
	"testing"
)

// Redis delivers stream values back as strings, so the round trip has to
// survive that coercion.
func TestEventRoundTripThroughStreamValues(t *testing.T) {
	original := NewAvatarReplacedEvent(42, []string{"avatars/a.jpg", "avatars/a_thumb.jpg"})

	values, err := original.ToMap()
	if err != nil {
		t.Fatalf("ToMap: %v", err)
	}

	// Simulate Redis stringifying every value
	wire := make(map[string]interface{}, len(values))
	for k, v := range values {
		wire[k] = fmt.Sprintf("%v", v)
	}

	parsed, err := EventFromMap(wire)
	if err != nil {
		t.Fatalf("EventFromMap: %v", err)
	}

	if parsed.Type != EventAvatarReplaced {
		t.Errorf("type = %q, want %q", parsed.Type, EventAvatarReplaced)
	}
	if parsed.UserID != 42 {
		t.Errorf("user_id = %d, want 42", parsed.UserID)
	}
	if parsed.Timestamp != original.Timestamp {
		t.Errorf("timestamp = %d, want %d", parsed.Timestamp, original.Timestamp)
	}
	if len(parsed.Keys) != 2 || parsed.Keys[0] != "avatars/a.jpg" {
		t.Errorf("keys = %v, want original keys", parsed.Keys)
	}
}

func TestEventFromMap_MissingType(t *testing.T) {
	if _, err := EventFromMap(map[string]interface{}{"user_id": "1"}); err == nil {
		t.Fatal("expected error for entry without type")
	}
}
