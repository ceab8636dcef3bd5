package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"studypilot/pkg/domain"
)

// MemoryStore keeps entities in-process. Used in tests and for local runs
// without Redis.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	plans    map[string]domain.StudyPlan
	planIDs  map[string][]string // userID -> plan IDs in insertion order
	messages map[string][]domain.Message
	content  map[string][]domain.GeneratedContent
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]domain.User),
		plans:    make(map[string]domain.StudyPlan),
		planIDs:  make(map[string][]string),
		messages: make(map[string][]domain.Message),
		content:  make(map[string][]domain.GeneratedContent),
	}
}

// EnsureUser returns the stored user, creating one lazily when absent.
func (m *MemoryStore) EnsureUser(id string) domain.User {
	if id == "" {
		id = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		return user
	}
	user := domain.User{ID: id, CreatedAt: time.Now().UTC()}
	m.users[id] = user
	return user
}

// GetUser returns a user by id.
func (m *MemoryStore) GetUser(id string) (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	return user, ok
}

// SaveStudyPlan stores or replaces a plan and tracks insertion order.
func (m *MemoryStore) SaveStudyPlan(plan domain.StudyPlan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.plans[plan.ID]; !exists {
		m.planIDs[plan.UserID] = append(m.planIDs[plan.UserID], plan.ID)
	}
	m.plans[plan.ID] = plan
}

// GetStudyPlan returns a plan by id.
func (m *MemoryStore) GetStudyPlan(id string) (domain.StudyPlan, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plan, ok := m.plans[id]
	return plan, ok
}

// ListStudyPlans returns a user's plans in insertion order.
func (m *MemoryStore) ListStudyPlans(userID string) []domain.StudyPlan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.StudyPlan, 0, len(m.planIDs[userID]))
	for _, id := range m.planIDs[userID] {
		if plan, ok := m.plans[id]; ok {
			res = append(res, plan)
		}
	}
	return res
}

// DeleteStudyPlan removes the plan when owned by userID; reports false when
// nothing changed.
func (m *MemoryStore) DeleteStudyPlan(id, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	plan, ok := m.plans[id]
	if !ok || plan.UserID != userID {
		return false
	}
	delete(m.plans, id)
	kept := m.planIDs[userID][:0]
	for _, pid := range m.planIDs[userID] {
		if pid != id {
			kept = append(kept, pid)
		}
	}
	m.planIDs[userID] = kept
	return true
}

// AppendMessage records a message for its (user, plan) pair.
func (m *MemoryStore) AppendMessage(msg domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := msg.UserID + ":" + msg.StudyPlanID
	m.messages[key] = append(m.messages[key], msg)
}

// ListMessages returns messages in insertion order.
func (m *MemoryStore) ListMessages(userID, planID string) []domain.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.messages[userID+":"+planID]
	res := make([]domain.Message, len(msgs))
	copy(res, msgs)
	return res
}

// DeleteMessages drops the message list for the pair.
func (m *MemoryStore) DeleteMessages(userID, planID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.messages, userID+":"+planID)
}

// SaveGeneratedContent appends the item, replacing any entry with its id.
func (m *MemoryStore) SaveGeneratedContent(item domain.GeneratedContent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := item.UserID + ":" + item.StudyPlanID
	items := m.content[key]
	kept := items[:0]
	for _, existing := range items {
		if existing.ID != item.ID {
			kept = append(kept, existing)
		}
	}
	m.content[key] = append(kept, item)
}

// ListGeneratedContent returns stored content for the pair.
func (m *MemoryStore) ListGeneratedContent(userID, planID string) []domain.GeneratedContent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := m.content[userID+":"+planID]
	res := make([]domain.GeneratedContent, len(items))
	copy(res, items)
	return res
}

// DeleteGeneratedContent drops the content list for the pair.
func (m *MemoryStore) DeleteGeneratedContent(userID, planID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.content, userID+":"+planID)
}
