package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/townbeat/townbeat-go/apperrors"
)

func TestBuildEventFilter(t *testing.T) {
	t.Run("non-admin is always restricted to approved events", func(t *testing.T) {
		filter, err := buildEventFilter(eventFilters{}, false)
		require.NoError(t, err)
		assert.Equal(t, bson.M{"is_approved": true}, filter)
	})

	t.Run("admin never gets an approval restriction", func(t *testing.T) {
		filter, err := buildEventFilter(eventFilters{Category: "Music", City: "Nairobi"}, true)
		require.NoError(t, err)
		_, present := filter["is_approved"]
		assert.False(t, present)
		assert.Equal(t, "Music", filter["category"])
		assert.Equal(t, "Nairobi", filter["city"])
	})

	t.Run("absent fields impose no predicate", func(t *testing.T) {
		filter, err := buildEventFilter(eventFilters{AgeGroup: "Kids"}, false)
		require.NoError(t, err)
		assert.Equal(t, bson.M{"is_approved": true, "age_group": "Kids"}, filter)
	})

	t.Run("month filter becomes a range predicate", func(t *testing.T) {
		filter, err := buildEventFilter(eventFilters{Month: "March-2025"}, false)
		require.NoError(t, err)
		rng, ok := filter["event_date_time"].(bson.M)
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), rng["$gte"])
		assert.Equal(t, time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC), rng["$lte"])
	})

	t.Run("bad month label is rejected", func(t *testing.T) {
		_, err := buildEventFilter(eventFilters{Month: "Martober-2025"}, false)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidMonthLabel)
	})
}

func TestMonthRange(t *testing.T) {
	t.Run("leap February", func(t *testing.T) {
		start, end, err := monthRange("February-2024")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC), end)
	})

	t.Run("non-leap February", func(t *testing.T) {
		start, end, err := monthRange("February-2025")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, time.February, 28, 23, 59, 59, 0, time.UTC), end)
	})

	t.Run("December rolls into the next year", func(t *testing.T) {
		start, end, err := monthRange("December-2024")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC), end)
	})

	t.Run("range never leaks into adjacent months", func(t *testing.T) {
		start, end, err := monthRange("April-2025")
		require.NoError(t, err)
		assert.Equal(t, time.April, start.Month())
		assert.Equal(t, time.April, end.Month())
		assert.Equal(t, time.May, end.Add(time.Second).Month())
	})
}

func TestBuildEventUpdate(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

	t.Run("display fields propagate into saved copies", func(t *testing.T) {
		update, copyUpdate, err := buildEventUpdate(eventUpdateInput{
			Name:          "Jazz in the Park",
			Address:       "12 Uhuru Gardens",
			City:          "Nairobi",
			Category:      "Music",
			AgeGroup:      "All Ages",
			EventDateTime: "2025-07-01T19:00:00Z",
		}, now)
		require.NoError(t, err)

		when := time.Date(2025, time.July, 1, 19, 0, 0, 0, time.UTC)
		assert.Equal(t, bson.M{
			"updated_at":      now,
			"name":            "Jazz in the Park",
			"address":         "12 Uhuru Gardens",
			"city":            "Nairobi",
			"category":        "Music",
			"age_group":       "All Ages",
			"event_date_time": when,
		}, update)
		assert.Equal(t, bson.M{
			"event.name":            "Jazz in the Park",
			"event.address":         "12 Uhuru Gardens",
			"event.city":            "Nairobi",
			"event.category":        "Music",
			"event.age_group":       "All Ages",
			"event.event_date_time": when,
		}, copyUpdate)
	})

	t.Run("every propagated field lands under the embedded prefix", func(t *testing.T) {
		// The copy $set drives an UpdateMany over every saved copy of
		// the event; a key outside the embedded document would clobber
		// the copy record itself.
		_, copyUpdate, err := buildEventUpdate(eventUpdateInput{
			Name: "Renamed", City: "Mombasa", EventDateTime: "2025-08-01",
		}, now)
		require.NoError(t, err)
		require.NotEmpty(t, copyUpdate)
		for key := range copyUpdate {
			assert.Contains(t, key, "event.")
		}
	})

	t.Run("description and contact fields never propagate", func(t *testing.T) {
		update, copyUpdate, err := buildEventUpdate(eventUpdateInput{
			Description: "now with a second stage",
			Email:       "organizer@example.com",
			Website:     "https://jazz.example.com",
		}, now)
		require.NoError(t, err)
		assert.Equal(t, "now with a second stage", update["description"])
		assert.Equal(t, "organizer@example.com", update["email"])
		assert.Equal(t, "https://jazz.example.com", update["website"])
		assert.Empty(t, copyUpdate)
	})

	t.Run("empty input yields only the timestamp", func(t *testing.T) {
		update, copyUpdate, err := buildEventUpdate(eventUpdateInput{}, now)
		require.NoError(t, err)
		assert.Equal(t, bson.M{"updated_at": now}, update)
		assert.Empty(t, copyUpdate)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		_, _, err := buildEventUpdate(eventUpdateInput{Category: "Snorkeling"}, now)
		assert.Error(t, err)
	})

	t.Run("unknown age group is rejected", func(t *testing.T) {
		_, _, err := buildEventUpdate(eventUpdateInput{AgeGroup: "Toddlers"}, now)
		assert.Error(t, err)
	})

	t.Run("bad event time is rejected", func(t *testing.T) {
		_, _, err := buildEventUpdate(eventUpdateInput{EventDateTime: "next tuesday"}, now)
		assert.Error(t, err)
	})
}
