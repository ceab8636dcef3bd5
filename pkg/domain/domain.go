package domain

import (
	"encoding/json"
	"time"
)

// MessageRole distinguishes who authored a chat message.
type MessageRole string

const (
	RoleUser MessageRole = "user"
	RoleAI   MessageRole = "ai"
)

// ContentType enumerates the kinds of generated study material.
type ContentType string

const (
	ContentFlashcards ContentType = "flashcards"
	ContentSummary    ContentType = "summary"
	ContentReview     ContentType = "review"
)

// ValidContentType reports whether t is a known generated-content type.
func ValidContentType(t ContentType) bool {
	switch t {
	case ContentFlashcards, ContentSummary, ContentReview:
		return true
	default:
		return false
	}
}

// User is created lazily on first chat or plan request. Never updated or
// deleted through the API.
type User struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// StudyPlan is owned by exactly one user and deletable only by its owner.
type StudyPlan struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Message is one turn in a (user, study plan) conversation. Messages are
// stored as an append-only list per pair; insertion order is chronological
// order.
type Message struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	StudyPlanID string      `json:"studyPlanId"`
	Type        MessageRole `json:"type"`
	Content     string      `json:"content"`
	Timestamp   time.Time   `json:"timestamp"`
}

// GeneratedContent is model output materialized as flashcards, a summary, or
// a review quiz. Saving an item whose id already exists replaces the old
// entry (last write wins, keyed by id).
type GeneratedContent struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	StudyPlanID string          `json:"studyPlanId"`
	Type        ContentType     `json:"type"`
	Title       string          `json:"title"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// SourceFile describes text material extracted from an upload or a scraped
// page, returned to the client for use as plan-generation source input.
type SourceFile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	Size    int64  `json:"size,omitempty"`
	Type    string `json:"type"`
	Status  string `json:"status"`
	Content string `json:"content"`
	Preview string `json:"preview"`
}
