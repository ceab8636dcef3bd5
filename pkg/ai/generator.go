package ai

import "context"

// ChatMessage is one entry of a completion request payload.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatGenerator produces model text from an ordered message payload.
// The OpenAI-compatible client implements this; tests substitute fakes.
type ChatGenerator interface {
	GenerateChat(ctx context.Context, messages []ChatMessage) (string, error)
}
