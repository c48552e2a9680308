package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSavedEventID(t *testing.T) {
	userID, err := primitive.ObjectIDFromHex("64f0c2a9e13d5a0001a7b001")
	require.NoError(t, err)
	eventID, err := primitive.ObjectIDFromHex("64f0c2a9e13d5a0001a7b002")
	require.NoError(t, err)

	t.Run("deterministic composite of user and event", func(t *testing.T) {
		id := SavedEventID(userID, eventID)
		assert.Equal(t, "64f0c2a9e13d5a0001a7b001_64f0c2a9e13d5a0001a7b002", id)
		assert.Equal(t, id, SavedEventID(userID, eventID))
	})

	t.Run("different pairs never collide", func(t *testing.T) {
		assert.NotEqual(t, SavedEventID(userID, eventID), SavedEventID(eventID, userID))
	})
}

func TestSnapshotOf(t *testing.T) {
	when := time.Date(2025, time.June, 10, 19, 0, 0, 0, time.UTC)
	ev := Event{
		ID:            primitive.NewObjectID(),
		Name:          "Jazz in the Park",
		Description:   "open air",
		Address:       "12 Uhuru Gardens",
		City:          "Nairobi",
		Category:      "Music",
		AgeGroup:      "All Ages",
		ImageURL:      "https://img.example/jazz.jpg",
		EventDateTime: when,
	}

	copy := SnapshotOf(ev)
	assert.Equal(t, ev.Name, copy.Name)
	assert.Equal(t, ev.Address, copy.Address)
	assert.Equal(t, ev.City, copy.City)
	assert.Equal(t, ev.Category, copy.Category)
	assert.Equal(t, ev.AgeGroup, copy.AgeGroup)
	assert.Equal(t, ev.ImageURL, copy.ImageURL)
	assert.Equal(t, when, copy.EventDateTime)
}
