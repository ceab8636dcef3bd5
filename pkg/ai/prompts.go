package ai

import "strings"

// Request types the completion surface understands. "chat" doubles as the
// fallback persona for unknown or omitted types.
const (
	TypeChat       = "chat"
	TypeFlashcards = "flashcards"
	TypeSummary    = "summary"
	TypeReview     = "review"
)

const tutorPrompt = "You are a friendly and knowledgeable study tutor. " +
	"Help the student understand the material: explain concepts clearly, " +
	"use short examples, and ask a guiding question when it helps. Keep answers concise."

const flashcardsPrompt = "You are a study assistant that creates flashcards from the student's material. " +
	"Return ONLY JSON: an array of flashcards [{id, front, back}]. " +
	"No prose, no markdown fences, nothing outside the JSON array."

const summaryPrompt = "You are a study assistant that summarizes material for revision. " +
	"Return a plain-text prose summary. No JSON, no markdown, no headings."

const reviewPrompt = "You are a study assistant that writes review quizzes from the student's material. " +
	"Return ONLY JSON: an array of quiz questions [{id, question, options, correctAnswer, explanation}]. " +
	"No prose, no markdown fences, nothing outside the JSON array."

// SystemPrompt maps a requested content type to its system prompt. Unknown
// or empty types fall back to the tutor persona.
func SystemPrompt(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case TypeFlashcards:
		return flashcardsPrompt
	case TypeSummary:
		return summaryPrompt
	case TypeReview:
		return reviewPrompt
	default:
		return tutorPrompt
	}
}
