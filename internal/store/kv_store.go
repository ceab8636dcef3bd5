package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"studypilot/internal/kvstore"
	"studypilot/pkg/domain"
)

// KVStore persists entities as JSON blobs in a hosted key-value store.
//
// Lists (messages, generated content) live in a single JSON array per
// (user, plan) key and are updated read-modify-write. Two concurrent
// appends to the same key can race and one can be lost; this matches the
// hosted-KV data model and is accepted, not guarded.
type KVStore struct {
	kv kvstore.KV
}

// NewKVStore wraps a KV adapter with the entity key scheme.
func NewKVStore(kv kvstore.KV) *KVStore {
	return &KVStore{kv: kv}
}

func userKey(id string) string        { return "user:" + id }
func planKey(id string) string        { return "study_plan:" + id }
func planSetKey(userID string) string { return "study_plans:" + userID }
func messagesKey(userID, planID string) string {
	return fmt.Sprintf("messages:%s:%s", userID, planID)
}
func contentKey(userID, planID string) string {
	return fmt.Sprintf("generated_content:%s:%s", userID, planID)
}

// EnsureUser returns the stored user, creating one lazily when absent.
// The create still reports success when the store is unreachable.
func (s *KVStore) EnsureUser(id string) domain.User {
	if id == "" {
		id = uuid.NewString()
	}
	if user, ok := s.GetUser(id); ok {
		return user
	}
	user := domain.User{ID: id, CreatedAt: time.Now().UTC()}
	s.setJSON(userKey(id), user)
	return user
}

// GetUser loads a user by id.
func (s *KVStore) GetUser(id string) (domain.User, bool) {
	var user domain.User
	if !s.getJSON(userKey(id), &user) {
		return domain.User{}, false
	}
	return user, true
}

// SaveStudyPlan stores the plan blob and registers it in the owner's plan set.
func (s *KVStore) SaveStudyPlan(plan domain.StudyPlan) {
	s.setJSON(planKey(plan.ID), plan)
	if err := s.kv.AddToSet(planSetKey(plan.UserID), plan.ID); err != nil {
		s.degrade("add plan to set", err)
	}
}

// GetStudyPlan loads a plan by id.
func (s *KVStore) GetStudyPlan(id string) (domain.StudyPlan, bool) {
	var plan domain.StudyPlan
	if !s.getJSON(planKey(id), &plan) {
		return domain.StudyPlan{}, false
	}
	return plan, true
}

// ListStudyPlans returns the plans registered in the user's plan set.
func (s *KVStore) ListStudyPlans(userID string) []domain.StudyPlan {
	ids, err := s.kv.SetMembers(planSetKey(userID))
	if err != nil {
		s.degrade("list plan set", err)
		return nil
	}
	plans := make([]domain.StudyPlan, 0, len(ids))
	for _, id := range ids {
		if plan, ok := s.GetStudyPlan(id); ok {
			plans = append(plans, plan)
		}
	}
	return plans
}

// DeleteStudyPlan removes the plan when it exists and is owned by userID.
// It reports false when nothing changed.
func (s *KVStore) DeleteStudyPlan(id, userID string) bool {
	plan, ok := s.GetStudyPlan(id)
	if !ok || plan.UserID != userID {
		return false
	}
	if err := s.kv.Delete(planKey(id)); err != nil {
		s.degrade("delete plan", err)
		return false
	}
	if err := s.kv.RemoveFromSet(planSetKey(userID), id); err != nil {
		s.degrade("remove plan from set", err)
	}
	return true
}

// AppendMessage appends to the (user, plan) message list and writes the full
// list back.
func (s *KVStore) AppendMessage(msg domain.Message) {
	key := messagesKey(msg.UserID, msg.StudyPlanID)
	msgs := s.readMessages(key)
	msgs = append(msgs, msg)
	s.setJSON(key, msgs)
}

// ListMessages returns the full message list in insertion order, or an empty
// slice when absent or unreachable.
func (s *KVStore) ListMessages(userID, planID string) []domain.Message {
	return s.readMessages(messagesKey(userID, planID))
}

// DeleteMessages removes the message list; repeated deletes are no-ops.
func (s *KVStore) DeleteMessages(userID, planID string) {
	if err := s.kv.Delete(messagesKey(userID, planID)); err != nil {
		s.degrade("delete messages", err)
	}
}

// SaveGeneratedContent appends the item, first removing any existing entry
// with the same id. Last write wins per id; concurrent writers can still
// race on the list blob.
func (s *KVStore) SaveGeneratedContent(item domain.GeneratedContent) {
	key := contentKey(item.UserID, item.StudyPlanID)
	items := s.readContent(key)
	kept := items[:0]
	for _, existing := range items {
		if existing.ID != item.ID {
			kept = append(kept, existing)
		}
	}
	kept = append(kept, item)
	s.setJSON(key, kept)
}

// ListGeneratedContent returns stored content for the pair.
func (s *KVStore) ListGeneratedContent(userID, planID string) []domain.GeneratedContent {
	return s.readContent(contentKey(userID, planID))
}

// DeleteGeneratedContent removes the content list for the pair.
func (s *KVStore) DeleteGeneratedContent(userID, planID string) {
	if err := s.kv.Delete(contentKey(userID, planID)); err != nil {
		s.degrade("delete generated content", err)
	}
}

func (s *KVStore) readMessages(key string) []domain.Message {
	var msgs []domain.Message
	if !s.getJSON(key, &msgs) {
		return []domain.Message{}
	}
	return msgs
}

func (s *KVStore) readContent(key string) []domain.GeneratedContent {
	var items []domain.GeneratedContent
	if !s.getJSON(key, &items) {
		return []domain.GeneratedContent{}
	}
	return items
}

// getJSON reads and unmarshals the blob at key. Absence and unreachability
// both come back as false; only the latter is logged. The collapse is
// deliberate (fail-open store).
func (s *KVStore) getJSON(key string, out any) bool {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.degrade("get "+key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.degrade("decode "+key, err)
		return false
	}
	return true
}

func (s *KVStore) setJSON(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.degrade("encode "+key, err)
		return
	}
	if err := s.kv.Set(key, string(data)); err != nil {
		s.degrade("set "+key, err)
	}
}

func (s *KVStore) degrade(op string, err error) {
	slog.Warn("storage degraded", "op", op, "err", err)
}
