package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateChatSendsPayloadAndReturnsText(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Mitochondria produce ATP."}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "test-model")
	text, err := client.GenerateChat(context.Background(), []ChatMessage{
		{Role: "system", Content: "tutor"},
		{Role: "user", Content: "what do mitochondria do?"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "Mitochondria produce ATP." {
		t.Fatalf("unexpected text %q", text)
	}
	if got.Model != "test-model" {
		t.Fatalf("model not forwarded, got %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("payload mismatch: %+v", got.Messages)
	}
}

func TestGenerateChatSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "test-model")
	if _, err := client.GenerateChat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatalf("expected error on non-success status")
	}
}

func TestGenerateChatRequiresModel(t *testing.T) {
	client := NewClient("http://localhost:1", "", "")
	if _, err := client.GenerateChat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatalf("expected error when model is unset")
	}
}
