package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townbeat/townbeat-go/apperrors"
)

func TestFormatEventTime(t *testing.T) {
	t.Run("epoch seconds", func(t *testing.T) {
		got, err := FormatEventTime("1706745600") // 2024-02-01T00:00:00Z
		require.NoError(t, err)
		assert.Equal(t, "Feb 1, 2024 12:00 AM", got)
	})

	t.Run("RFC3339 string", func(t *testing.T) {
		got, err := FormatEventTime("2025-06-10T19:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, "Jun 10, 2025 7:30 PM", got)
	})

	t.Run("absent falls back to Unknown Date", func(t *testing.T) {
		got, err := FormatEventTime("")
		require.NoError(t, err)
		assert.Equal(t, UnknownDate, got)
	})

	t.Run("unrecognized shape is an error, not a default", func(t *testing.T) {
		_, err := FormatEventTime("next tuesday")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrBadTimestamp)
	})
}

func TestNormalizeHit(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		doc := redis.Document{
			ID: "event:64f0c2a9e13d5a0001a7b001",
			Fields: map[string]string{
				"name":      "Jazz in the Park",
				"category":  "Music",
				"address":   "12 Uhuru Gardens",
				"age_group": "All Ages",
				"event_ts":  "1749584700",
			},
		}
		s, err := NormalizeHit(doc)
		require.NoError(t, err)
		assert.Equal(t, "64f0c2a9e13d5a0001a7b001", s.ID)
		assert.Equal(t, "Jazz in the Park", s.Name)
		assert.Equal(t, "Music", s.Category)
		assert.NotEqual(t, "1749584700", s.EventDateTime, "timestamp must be formatted, never raw")
	})

	t.Run("missing fields get display defaults", func(t *testing.T) {
		doc := redis.Document{
			ID:     "event:64f0c2a9e13d5a0001a7b002",
			Fields: map[string]string{},
		}
		s, err := NormalizeHit(doc)
		require.NoError(t, err)
		assert.Equal(t, "Other", s.Category)
		assert.Equal(t, "", s.Name)
		assert.Equal(t, "", s.Address)
		assert.Equal(t, UnknownDate, s.EventDateTime)
	})

	t.Run("malformed timestamp rejects the hit", func(t *testing.T) {
		doc := redis.Document{
			ID:     "event:64f0c2a9e13d5a0001a7b003",
			Fields: map[string]string{"event_ts": "{bad}"},
		}
		_, err := NormalizeHit(doc)
		assert.ErrorIs(t, err, apperrors.ErrBadTimestamp)
	})
}

func TestDayRangeQuery(t *testing.T) {
	// The time-of-day component is ignored; the window is always the
	// calendar day: inclusive start, exclusive end at +86400s.
	day := time.Date(2025, time.June, 10, 15, 4, 5, 0, time.UTC)
	q := dayRangeQuery(day)

	start := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC).Unix()
	end := start + 86400
	assert.Equal(t, fmt.Sprintf("@event_ts:[%d (%d]", start, end), q)
}

func TestScopeQuery(t *testing.T) {
	t.Run("non-admin search is scoped to approved records", func(t *testing.T) {
		assert.Equal(t, "@is_approved:{1} jazz", scopeQuery("jazz", true))
	})

	t.Run("admin search is unscoped", func(t *testing.T) {
		assert.Equal(t, "jazz", scopeQuery("jazz", false))
	})
}
