package apperrors

import "errors"

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidMonthLabel = errors.New("invalid month label, use MonthName-Year")
	ErrReviewTooEarly    = errors.New("reviews open one hour after the event starts")
	ErrBadTimestamp      = errors.New("unrecognized event timestamp shape")
)
