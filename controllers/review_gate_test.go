package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanReview(t *testing.T) {
	start := time.Date(2025, time.June, 10, 19, 0, 0, 0, time.UTC)

	t.Run("permitted exactly on the boundary instant", func(t *testing.T) {
		assert.True(t, canReview(start, start.Add(time.Hour)))
	})

	t.Run("rejected one second before", func(t *testing.T) {
		assert.False(t, canReview(start, start.Add(time.Hour-time.Second)))
	})

	t.Run("permitted well after", func(t *testing.T) {
		assert.True(t, canReview(start, start.Add(48*time.Hour)))
	})

	t.Run("rejected before the event starts", func(t *testing.T) {
		assert.False(t, canReview(start, start.Add(-time.Minute)))
	})
}

func TestValidReviewInput(t *testing.T) {
	t.Run("rating and long enough text", func(t *testing.T) {
		assert.True(t, validReviewInput(4, "great show, loud crowd"))
	})

	t.Run("text shorter than ten characters", func(t *testing.T) {
		assert.False(t, validReviewInput(4, "great"))
	})

	t.Run("rating out of range", func(t *testing.T) {
		assert.False(t, validReviewInput(0, "great show, loud crowd"))
		assert.False(t, validReviewInput(6, "great show, loud crowd"))
	})

	t.Run("length counts characters, not bytes", func(t *testing.T) {
		// 3 characters, 12 bytes
		assert.False(t, validReviewInput(4, "🎉🎉🎉"))
		// 11 characters, all multi-byte
		assert.True(t, validReviewInput(4, "すばらしい祭りでした。"))
	})
}
