package ai

import (
	"strings"
	"testing"
)

func TestFlashcardsPromptInstruction(t *testing.T) {
	prompt := SystemPrompt(TypeFlashcards)
	want := "Return ONLY JSON: an array of flashcards [{id, front, back}]"
	if !strings.Contains(prompt, want) {
		t.Fatalf("flashcards prompt missing instruction %q, got %q", want, prompt)
	}
}

func TestReviewPromptInstruction(t *testing.T) {
	prompt := SystemPrompt(TypeReview)
	want := "[{id, question, options, correctAnswer, explanation}]"
	if !strings.Contains(prompt, want) {
		t.Fatalf("review prompt missing schema %q, got %q", want, prompt)
	}
}

func TestUnknownTypeFallsBackToTutor(t *testing.T) {
	tutor := SystemPrompt(TypeChat)
	for _, typ := range []string{"", "poetry", "FLASHCARD"} {
		if got := SystemPrompt(typ); got != tutor {
			t.Fatalf("type %q should fall back to tutor persona", typ)
		}
	}
}

func TestTypeLookupIsCaseInsensitive(t *testing.T) {
	if SystemPrompt(" Flashcards ") != SystemPrompt(TypeFlashcards) {
		t.Fatalf("type lookup should trim and lowercase input")
	}
}
