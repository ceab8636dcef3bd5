package store

import "studypilot/pkg/domain"

// Store defines persistence for users, study plans, messages, and generated
// content.
//
// Every implementation is fail-open: storage failures are logged and
// collapsed to a safe default (zero value, empty list, or write that
// silently did nothing). Callers never see a storage error and must not
// treat a successful return as a durability guarantee. The one observable
// distinction is ownership: DeleteStudyPlan reports whether anything was
// actually removed.
type Store interface {
	// users
	EnsureUser(id string) domain.User
	GetUser(id string) (domain.User, bool)

	// study plans
	SaveStudyPlan(plan domain.StudyPlan)
	GetStudyPlan(id string) (domain.StudyPlan, bool)
	ListStudyPlans(userID string) []domain.StudyPlan
	DeleteStudyPlan(id, userID string) bool

	// messages
	AppendMessage(msg domain.Message)
	ListMessages(userID, planID string) []domain.Message
	DeleteMessages(userID, planID string)

	// generated content
	SaveGeneratedContent(item domain.GeneratedContent)
	ListGeneratedContent(userID, planID string) []domain.GeneratedContent
	DeleteGeneratedContent(userID, planID string)
}
