package session

import (
	"fmt"
	"testing"

	"studypilot/internal/store"
	"studypilot/pkg/domain"
)

func historyOf(n int) []domain.Message {
	msgs := make([]domain.Message, 0, n)
	for i := 0; i < n; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAI
		}
		msgs = append(msgs, domain.Message{
			ID:      fmt.Sprintf("m%d", i),
			Type:    role,
			Content: fmt.Sprintf("turn %d", i),
		})
	}
	return msgs
}

func TestBuildPromptWindowSmallHistoryUnchanged(t *testing.T) {
	for _, n := range []int{0, 1, 5, HistoryWindow} {
		history := historyOf(n)
		window := BuildPromptWindow(history, "sys")
		if len(window) != n+1 {
			t.Fatalf("n=%d: expected %d entries, got %d", n, n+1, len(window))
		}
		if window[0].Role != "system" || window[0].Content != "sys" {
			t.Fatalf("n=%d: first entry must be the system prompt, got %+v", n, window[0])
		}
		for i, msg := range history {
			if window[i+1].Content != msg.Content {
				t.Fatalf("n=%d: order not preserved at %d", n, i)
			}
		}
	}
}

func TestBuildPromptWindowTailCutsLongHistory(t *testing.T) {
	history := historyOf(53)
	window := BuildPromptWindow(history, "sys")
	if len(window) != HistoryWindow+1 {
		t.Fatalf("expected system + %d entries, got %d", HistoryWindow, len(window))
	}
	// Must be exactly the last 20 in original relative order.
	tail := history[len(history)-HistoryWindow:]
	for i, msg := range tail {
		if window[i+1].Content != msg.Content {
			t.Fatalf("tail order broken at %d: want %q got %q", i, msg.Content, window[i+1].Content)
		}
	}
}

func TestBuildPromptWindowMapsRoles(t *testing.T) {
	history := []domain.Message{
		{Type: domain.RoleUser, Content: "q"},
		{Type: domain.RoleAI, Content: "a"},
		{Type: domain.MessageRole("system-ish"), Content: "odd"},
	}
	window := BuildPromptWindow(history, "sys")
	if window[1].Role != "user" {
		t.Fatalf("user role should stay user, got %q", window[1].Role)
	}
	if window[2].Role != "assistant" {
		t.Fatalf("ai role should map to assistant, got %q", window[2].Role)
	}
	if window[3].Role != "assistant" {
		t.Fatalf("unknown roles should map to assistant, got %q", window[3].Role)
	}
}

func TestAppendThenHistoryReturnsAppendedLast(t *testing.T) {
	m := NewManager(store.NewMemoryStore())

	m.AppendMessage("u1", "p1", domain.RoleUser, "first")
	appended := m.AppendMessage("u1", "p1", domain.RoleAI, "second")

	history := m.History("u1", "p1")
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	last := history[len(history)-1]
	if last.ID != appended.ID || last.Type != appended.Type ||
		last.Content != appended.Content || !last.Timestamp.Equal(appended.Timestamp) {
		t.Fatalf("last history entry should equal appended message: %+v vs %+v", last, appended)
	}
}

func TestDeleteHistoryIsIdempotent(t *testing.T) {
	m := NewManager(store.NewMemoryStore())
	m.AppendMessage("u1", "p1", domain.RoleUser, "hi")

	m.DeleteHistory("u1", "p1")
	if len(m.History("u1", "p1")) != 0 {
		t.Fatalf("history should be empty after delete")
	}
	m.DeleteHistory("u1", "p1")
	if len(m.History("u1", "p1")) != 0 {
		t.Fatalf("repeated delete should stay a no-op")
	}
}
