package app

import "errors"

var (
	// ErrModelUnavailable is the single generic message shown for any
	// completion API failure. One attempt, no retry.
	ErrModelUnavailable    = errors.New("AI service unavailable")
	ErrPaymentsUnavailable = errors.New("payments not configured")
	ErrPlanNotFound        = errors.New("study plan not found")
)
