package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"studypilot/internal/extract"
	"studypilot/internal/payments"
	"studypilot/internal/scrape"
	"studypilot/internal/session"
	"studypilot/internal/store"
	"studypilot/pkg/ai"
	"studypilot/pkg/domain"
	"studypilot/pkg/storage"
)

const planSystemPrompt = "You are an expert curriculum designer. Given a topic, learner goals, and source material, produce a structured study plan as plain text: a short overview followed by a numbered list of study milestones with what to learn and practice in each."

// Config holds the injected collaborators for the core application.
type Config struct {
	Store    store.Store
	Model    ai.ChatGenerator
	Payments payments.CheckoutCreator
	Scraper  *scrape.Scraper
	Objects  storage.ObjectStore
}

// App is the core application service wiring storage, sessions, the model
// gateway, scraping, and payments.
type App struct {
	store    store.Store
	sessions *session.Manager
	model    ai.ChatGenerator
	payments payments.CheckoutCreator
	scraper  *scrape.Scraper
	objects  storage.ObjectStore
}

// New constructs the application. Payments and object storage are optional;
// the rest is required.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.Model == nil {
		return nil, fmt.Errorf("model client required")
	}
	scraper := cfg.Scraper
	if scraper == nil {
		scraper = scrape.New()
	}
	return &App{
		store:    cfg.Store,
		sessions: session.NewManager(cfg.Store),
		model:    cfg.Model,
		payments: cfg.Payments,
		scraper:  scraper,
		objects:  cfg.Objects,
	}, nil
}

// ChatResult carries the model reply plus the resolved identifiers, which
// may have been generated when the request omitted them.
type ChatResult struct {
	Reply       string
	UserID      string
	StudyPlanID string
}

// Chat runs one tutoring turn: record the user message, build the rolling
// window over stored history, call the model, record and return the reply.
// Model failures surface as ErrModelUnavailable; storage failures never
// fail the request.
func (a *App) Chat(userID, planID, contentType, message string) (ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return ChatResult{}, fmt.Errorf("message required")
	}
	user := a.store.EnsureUser(strings.TrimSpace(userID))
	plan := a.ensureStudyPlan(user.ID, strings.TrimSpace(planID), "")

	a.sessions.AppendMessage(user.ID, plan.ID, domain.RoleUser, message)

	// Degrades to system + current message when history is unavailable.
	history := a.sessions.History(user.ID, plan.ID)
	if len(history) == 0 {
		history = []domain.Message{{Type: domain.RoleUser, Content: message}}
	}
	window := session.BuildPromptWindow(history, ai.SystemPrompt(contentType))

	reply, err := a.model.GenerateChat(context.Background(), window)
	if err != nil {
		slog.Error("model call failed", "error", err)
		return ChatResult{}, ErrModelUnavailable
	}

	a.sessions.AppendMessage(user.ID, plan.ID, domain.RoleAI, reply)
	return ChatResult{Reply: reply, UserID: user.ID, StudyPlanID: plan.ID}, nil
}

// SourceInput is one piece of source material supplied for plan generation.
type SourceInput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// PlanResult is the outcome of plan generation: the persisted plan and the
// names of the sources that informed it.
type PlanResult struct {
	Plan    domain.StudyPlan
	Sources []string
}

// GeneratePlanWithSources asks the model for a study plan built from the
// given sources and persists it. The plan is still returned when the
// persistence write silently fails.
func (a *App) GeneratePlanWithSources(userID, planID, title, description, goals string, sources []SourceInput) (PlanResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return PlanResult{}, fmt.Errorf("title required")
	}
	user := a.store.EnsureUser(strings.TrimSpace(userID))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic: %s\n", title)
	if description = strings.TrimSpace(description); description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", description)
	}
	if goals = strings.TrimSpace(goals); goals != "" {
		fmt.Fprintf(&sb, "Goals: %s\n", goals)
	}
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		name := strings.TrimSpace(src.Name)
		if name == "" {
			name = "untitled source"
		}
		names = append(names, name)
		if content := strings.TrimSpace(src.Content); content != "" {
			fmt.Fprintf(&sb, "\nSource %q:\n%s\n", name, content)
		}
	}

	prompt := []ai.ChatMessage{
		{Role: "system", Content: planSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
	generated, err := a.model.GenerateChat(context.Background(), prompt)
	if err != nil {
		slog.Error("model call failed", "error", err)
		return PlanResult{}, ErrModelUnavailable
	}

	plan := domain.StudyPlan{
		ID:          strings.TrimSpace(planID),
		UserID:      user.ID,
		Title:       title,
		Description: generated,
		CreatedAt:   time.Now().UTC(),
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	a.store.SaveStudyPlan(plan)
	return PlanResult{Plan: plan, Sources: names}, nil
}

// SaveUploadedFile extracts text from an upload and returns it as source
// material. The raw bytes go to object storage when configured; a failed
// raw write degrades to extraction-only.
func (a *App) SaveUploadedFile(userID, filename string, size int64, contentType string, r io.Reader) (domain.SourceFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("read upload: %w", err)
	}
	text, err := extract.Text(filename, strings.NewReader(string(data)))
	if err != nil {
		return domain.SourceFile{}, err
	}

	fileID := uuid.NewString()
	if a.objects != nil {
		key := storage.UploadKey(strings.TrimSpace(userID), fileID, filename)
		if err := a.objects.Put(context.Background(), key, strings.NewReader(string(data)), int64(len(data)), contentType); err != nil {
			slog.Warn("raw upload not persisted", "error", err)
		}
	}

	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if fileType == "" {
		fileType = "txt"
	}
	return domain.SourceFile{
		ID:      fileID,
		Name:    filepath.Base(filename),
		Size:    size,
		Type:    fileType,
		Status:  "ready",
		Content: text,
		Preview: extract.Preview(text),
	}, nil
}

// ScrapeURL fetches a page and returns its text as source material.
func (a *App) ScrapeURL(rawURL string) (domain.SourceFile, error) {
	page, err := a.scraper.Fetch(rawURL)
	if err != nil {
		return domain.SourceFile{}, err
	}
	return domain.SourceFile{
		ID:      uuid.NewString(),
		Name:    page.Title,
		URL:     strings.TrimSpace(rawURL),
		Type:    "url",
		Status:  "ready",
		Content: page.Text,
		Preview: extract.Preview(page.Text),
	}, nil
}

// Messages returns the stored conversation for the pair, oldest first.
func (a *App) Messages(userID, planID string) []domain.Message {
	return a.sessions.History(userID, planID)
}

// MessageCounts returns the pair's message count and the total across all
// of the user's plans.
func (a *App) MessageCounts(userID, planID string) (count, total int) {
	count = len(a.sessions.History(userID, planID))
	for _, plan := range a.store.ListStudyPlans(userID) {
		total += len(a.sessions.History(userID, plan.ID))
	}
	if total < count {
		// The pair's plan may not be in the user's plan set.
		total = count
	}
	return count, total
}

// DeleteMessages clears the pair's conversation. Idempotent.
func (a *App) DeleteMessages(userID, planID string) {
	a.sessions.DeleteHistory(userID, planID)
}

// ListGeneratedContent returns saved study material for the pair.
func (a *App) ListGeneratedContent(userID, planID string) []domain.GeneratedContent {
	return a.store.ListGeneratedContent(userID, planID)
}

// SaveGeneratedContent validates and persists one item. Re-saving an id
// replaces the previous entry.
func (a *App) SaveGeneratedContent(item domain.GeneratedContent) (domain.GeneratedContent, error) {
	if strings.TrimSpace(item.UserID) == "" || strings.TrimSpace(item.StudyPlanID) == "" {
		return domain.GeneratedContent{}, fmt.Errorf("userId and studyPlanId required")
	}
	if !domain.ValidContentType(item.Type) {
		return domain.GeneratedContent{}, fmt.Errorf("unknown content type: %s", item.Type)
	}
	if strings.TrimSpace(item.ID) == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	a.store.SaveGeneratedContent(item)
	return item, nil
}

// DeleteGeneratedContent clears saved material for the pair. Idempotent.
func (a *App) DeleteGeneratedContent(userID, planID string) {
	a.store.DeleteGeneratedContent(userID, planID)
}

// CreateStudyPlan persists a plan, generating ids as needed. Reports
// success even when the write was silently lost.
func (a *App) CreateStudyPlan(userID, title, description string) (domain.StudyPlan, error) {
	if strings.TrimSpace(title) == "" {
		return domain.StudyPlan{}, fmt.Errorf("title required")
	}
	user := a.store.EnsureUser(strings.TrimSpace(userID))
	plan := domain.StudyPlan{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}
	a.store.SaveStudyPlan(plan)
	return plan, nil
}

// GetStudyPlan loads one plan.
func (a *App) GetStudyPlan(planID string) (domain.StudyPlan, error) {
	plan, ok := a.store.GetStudyPlan(strings.TrimSpace(planID))
	if !ok {
		return domain.StudyPlan{}, ErrPlanNotFound
	}
	return plan, nil
}

// ListStudyPlans returns the user's plans.
func (a *App) ListStudyPlans(userID string) []domain.StudyPlan {
	return a.store.ListStudyPlans(userID)
}

// DeleteStudyPlan removes a plan when the requester owns it, cascading to
// its messages and generated content. An ownership mismatch deletes nothing
// and reports false.
func (a *App) DeleteStudyPlan(planID, userID string) bool {
	planID = strings.TrimSpace(planID)
	userID = strings.TrimSpace(userID)
	if !a.store.DeleteStudyPlan(planID, userID) {
		return false
	}
	a.sessions.DeleteHistory(userID, planID)
	a.store.DeleteGeneratedContent(userID, planID)
	return true
}

// CreateCheckoutSession opens a Stripe checkout for a subscription price.
func (a *App) CreateCheckoutSession(priceID, email string) (string, error) {
	if a.payments == nil {
		return "", ErrPaymentsUnavailable
	}
	sessionID, err := a.payments.CreateCheckoutSession(priceID, email)
	if err != nil {
		slog.Error("checkout session failed", "error", err)
		return "", fmt.Errorf("payment service unavailable")
	}
	return sessionID, nil
}

// ensureStudyPlan loads the plan or lazily creates a stub record so chat
// can start before an explicit plan exists.
func (a *App) ensureStudyPlan(userID, planID, title string) domain.StudyPlan {
	if planID != "" {
		if plan, ok := a.store.GetStudyPlan(planID); ok {
			return plan
		}
	} else {
		planID = uuid.NewString()
	}
	if title == "" {
		title = "New study plan"
	}
	plan := domain.StudyPlan{
		ID:        planID,
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	a.store.SaveStudyPlan(plan)
	return plan
}
