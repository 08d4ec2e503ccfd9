package pagination

import (
	"errors"
	"testing"
	"time"
)

func TestParse_Valid(t *testing.T) {
	cursor, err := Parse("2026-08-01T12:30:00Z", "42")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	want := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	if !cursor.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", cursor.Timestamp, want)
	}
	if cursor.ID != 42 {
		t.Errorf("id = %d, want 42", cursor.ID)
	}
}

func TestParse_FractionalSeconds(t *testing.T) {
	cursor, err := Parse("2026-08-01T12:30:00.123456Z", "7")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cursor.Timestamp.Nanosecond() == 0 {
		t.Error("expected fractional seconds to be preserved")
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []struct {
		name      string
		timestamp string
		id        string
	}{
		{"empty timestamp", "", "42"},
		{"garbage timestamp", "not-a-time", "42"},
		{"unix seconds", "1722510600", "42"},
		{"empty id", "2026-08-01T12:30:00Z", ""},
		{"garbage id", "2026-08-01T12:30:00Z", "abc"},
		{"zero id", "2026-08-01T12:30:00Z", "0"},
		{"negative id", "2026-08-01T12:30:00Z", "-5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.timestamp, tc.id)
			if !errors.Is(err, ErrMalformedCursor) {
				t.Errorf("expected ErrMalformedCursor, got: %v", err)
			}
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	original := Cursor{
		Timestamp: time.Date(2026, 8, 1, 12, 30, 0, 123456000, time.UTC),
		ID:        99,
	}

	ts, id := original.Format()
	parsed, err := Parse(ts, id)
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}

	if !parsed.Timestamp.Equal(original.Timestamp) {
		t.Errorf("timestamp = %v, want %v", parsed.Timestamp, original.Timestamp)
	}
	if parsed.ID != original.ID {
		t.Errorf("id = %d, want %d", parsed.ID, original.ID)
	}
}

func TestIsZero(t *testing.T) {
	if !(Cursor{}).IsZero() {
		t.Error("zero cursor should report IsZero")
	}

	set := Cursor{Timestamp: time.Now(), ID: 1}
	if set.IsZero() {
		t.Error("set cursor should not report IsZero")
	}
}

func TestTrim(t *testing.T) {
	items := []int{1, 2, 3, 4}

	trimmed, hasNext := Trim(items, 3)
	if !hasNext {
		t.Error("expected hasNext with overflow row present")
	}
	if len(trimmed) != 3 {
		t.Errorf("len = %d, want 3", len(trimmed))
	}

	trimmed, hasNext = Trim(items, 4)
	if hasNext {
		t.Error("expected no next page for exact fit")
	}
	if len(trimmed) != 4 {
		t.Errorf("len = %d, want 4", len(trimmed))
	}

	trimmed, hasNext = Trim([]int{}, 3)
	if hasNext || len(trimmed) != 0 {
		t.Error("empty input should trim to empty with no next page")
	}
}
