package session

import (
	"fmt"
	"time"

	"studypilot/internal/store"
	"studypilot/pkg/ai"
	"studypilot/pkg/domain"
)

// HistoryWindow is the number of stored turns kept in a prompt payload.
// Fixed policy, not configurable.
const HistoryWindow = 20

// Manager owns the per-(user, plan) message log and produces the bounded
// context window for completion calls. It is the single home for the
// history handling that was previously duplicated per endpoint.
type Manager struct {
	store store.Store
}

// NewManager builds a session manager over the given store.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

// AppendMessage records one turn and persists the full list for the pair.
// Roles beyond user/ai are the caller's responsibility; content is stored
// as-is.
func (m *Manager) AppendMessage(userID, planID string, role domain.MessageRole, content string) domain.Message {
	msg := domain.Message{
		ID:          messageID(),
		UserID:      userID,
		StudyPlanID: planID,
		Type:        role,
		Content:     content,
		Timestamp:   time.Now().UTC(),
	}
	m.store.AppendMessage(msg)
	return msg
}

// History returns the stored message list in chronological order. Fails
// soft: a storage failure yields an empty sequence, never an error, so the
// caller degrades to a single-turn exchange instead of failing the request.
func (m *Manager) History(userID, planID string) []domain.Message {
	return m.store.ListMessages(userID, planID)
}

// DeleteHistory removes the stored list entirely; repeated deletes are
// no-ops.
func (m *Manager) DeleteHistory(userID, planID string) {
	m.store.DeleteMessages(userID, planID)
}

// BuildPromptWindow maps stored messages onto the completion two-role
// scheme (user stays "user", everything else becomes "assistant"), keeps
// only the last HistoryWindow entries, and prepends the system entry. The
// tail cut preserves relative order; nothing is summarized.
func BuildPromptWindow(history []domain.Message, systemPrompt string) []ai.ChatMessage {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	window := make([]ai.ChatMessage, 0, len(history)+1)
	window = append(window, ai.ChatMessage{Role: "system", Content: systemPrompt})
	for _, msg := range history {
		role := "assistant"
		if msg.Type == domain.RoleUser {
			role = "user"
		}
		window = append(window, ai.ChatMessage{Role: role, Content: msg.Content})
	}
	return window
}

// messageID returns a time-based identifier. Uniqueness within one list is
// good enough; two processes can collide only by writing in the same
// nanosecond for the same pair.
func messageID() string {
	return fmt.Sprintf("msg_%d", time.Now().UnixNano())
}
