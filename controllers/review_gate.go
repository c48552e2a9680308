package controllers

import (
	"time"
	"unicode/utf8"
)

// reviewDelay is how long after the event start reviews stay closed.
const reviewDelay = time.Hour

const minReviewTextLen = 10

// canReview permits a review from exactly eventStart+reviewDelay onward.
func canReview(eventStart, now time.Time) bool {
	return !now.Before(eventStart.Add(reviewDelay))
}

func validReviewInput(rating int, text string) bool {
	return rating >= 1 && rating <= 5 && utf8.RuneCountInString(text) >= minReviewTextLen
}
