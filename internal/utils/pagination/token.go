package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// Cursor points at the last transaction of a returned page.
// Listings are ordered by (OccurredAt, CreatedAt, ID) descending.
type Cursor struct {
	OccurredAt time.Time
	CreatedAt  time.Time
	ID         string
}

// EncodeCursor turns a cursor into an opaque URL-safe token.
func EncodeCursor(c Cursor) string {
	tokenStr := strings.Join([]string{
		c.OccurredAt.UTC().Format(timeFormat),
		c.CreatedAt.UTC().Format(timeFormat),
		c.ID,
	}, "|")
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeCursor parses a token produced by EncodeCursor.
func DecodeCursor(token string) (Cursor, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 || parts[2] == "" {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	occurredAt, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (occurred_at parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return Cursor{OccurredAt: occurredAt, CreatedAt: createdAt, ID: parts[2]}, nil
}

// Before reports whether c sorts strictly after other in descending listing order,
// i.e. whether an item at c belongs on a page that follows other.
func (c Cursor) Before(other Cursor) bool {
	if !c.OccurredAt.Equal(other.OccurredAt) {
		return c.OccurredAt.Before(other.OccurredAt)
	}
	if !c.CreatedAt.Equal(other.CreatedAt) {
		return c.CreatedAt.Before(other.CreatedAt)
	}
	return c.ID < other.ID
}

// NormalizeLimit clamps a page size to [1, max], using def for non-positive values.
func NormalizeLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
