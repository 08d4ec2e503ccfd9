// Package pagination implements keyset pagination over the
// (created_at DESC, id DESC) total order shared by all feed listings.
//
// A cursor names the last item the client has seen; a page resumes strictly
// after that position. The id is the tie-break for timestamp collisions, so
// pages never duplicate or skip items even when many rows share a timestamp.
package pagination

import (
	"errors"
	"strconv"
	"time"
)

// PageSize is the fixed number of items per feed page.
const PageSize = 10

// ErrMalformedCursor is returned when continuation input fails to parse.
// It is a client error, distinct from "no more results", and is never
// silently treated as an absent cursor.
var ErrMalformedCursor = errors.New("malformed pagination cursor")

// Cursor is a position in the (created_at DESC, id DESC) order.
// The zero value means "no cursor" (first page).
type Cursor struct {
	Timestamp time.Time
	ID        int64
}

// IsZero reports whether the cursor is unset (first-page request).
func (c Cursor) IsZero() bool {
	return c.ID == 0 && c.Timestamp.IsZero()
}

// Parse builds a cursor from the raw query parameters of a continuation
// request: an RFC 3339 timestamp and a decimal id.
func Parse(timestamp, id string) (Cursor, error) {
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		// Accept the fractional-second form emitted by Format as well.
		ts, err = time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			return Cursor{}, ErrMalformedCursor
		}
	}

	parsedID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || parsedID <= 0 {
		return Cursor{}, ErrMalformedCursor
	}

	return Cursor{Timestamp: ts, ID: parsedID}, nil
}

// Format renders the cursor back into the wire pair accepted by Parse.
func (c Cursor) Format() (timestamp, id string) {
	return c.Timestamp.Format(time.RFC3339Nano), strconv.FormatInt(c.ID, 10)
}

// Trim implements the fetch-one-extra policy: repositories query PageSize+1
// rows; Trim cuts the overflow row and reports whether a next page exists.
func Trim[T any](items []T, size int) ([]T, bool) {
	if len(items) > size {
		return items[:size], true
	}
	return items, false
}
