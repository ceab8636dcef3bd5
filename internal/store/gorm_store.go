package store

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studypilot/pkg/domain"
)

// GormStore implements Store over Postgres. It is the relational variant of
// the KV store and keeps the same fail-open contract: query failures are
// logged and collapsed to empty defaults.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations. Connection failures
// are real errors; the fail-open policy only covers per-request operations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &StudyPlanModel{}, &MessageModel{}, &GeneratedContentModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// EnsureUser returns the stored user, creating one lazily when absent.
func (g *GormStore) EnsureUser(id string) domain.User {
	if id == "" {
		id = uuid.NewString()
	}
	if user, ok := g.GetUser(id); ok {
		return user
	}
	user := domain.User{ID: id, CreatedAt: time.Now().UTC()}
	if err := g.db.Create(&UserModel{ID: user.ID, CreatedAt: user.CreatedAt}).Error; err != nil {
		g.degrade("create user", err)
	}
	return user
}

// GetUser returns a user by id.
func (g *GormStore) GetUser(id string) (domain.User, bool) {
	var row UserModel
	err := g.db.First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false
	}
	if err != nil {
		g.degrade("get user", err)
		return domain.User{}, false
	}
	return domain.User{ID: row.ID, CreatedAt: row.CreatedAt}, true
}

// SaveStudyPlan stores or replaces a plan.
func (g *GormStore) SaveStudyPlan(plan domain.StudyPlan) {
	row := StudyPlanModel{
		ID:          plan.ID,
		UserID:      plan.UserID,
		Title:       plan.Title,
		Description: plan.Description,
		CreatedAt:   plan.CreatedAt,
	}
	if err := g.db.Save(&row).Error; err != nil {
		g.degrade("save plan", err)
	}
}

// GetStudyPlan returns a plan by id.
func (g *GormStore) GetStudyPlan(id string) (domain.StudyPlan, bool) {
	var row StudyPlanModel
	err := g.db.First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.StudyPlan{}, false
	}
	if err != nil {
		g.degrade("get plan", err)
		return domain.StudyPlan{}, false
	}
	return planFromModel(row), true
}

// ListStudyPlans returns a user's plans oldest first.
func (g *GormStore) ListStudyPlans(userID string) []domain.StudyPlan {
	var rows []StudyPlanModel
	if err := g.db.Where("user_id = ?", userID).Order("created_at asc").Find(&rows).Error; err != nil {
		g.degrade("list plans", err)
		return nil
	}
	plans := make([]domain.StudyPlan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, planFromModel(row))
	}
	return plans
}

// DeleteStudyPlan removes the plan when owned by userID; reports false when
// nothing changed.
func (g *GormStore) DeleteStudyPlan(id, userID string) bool {
	res := g.db.Where("id = ? AND user_id = ?", id, userID).Delete(&StudyPlanModel{})
	if res.Error != nil {
		g.degrade("delete plan", res.Error)
		return false
	}
	return res.RowsAffected > 0
}

// AppendMessage records one conversation turn.
func (g *GormStore) AppendMessage(msg domain.Message) {
	row := MessageModel{
		ID:          msg.ID,
		UserID:      msg.UserID,
		StudyPlanID: msg.StudyPlanID,
		Role:        string(msg.Type),
		Content:     msg.Content,
		Timestamp:   msg.Timestamp,
	}
	if err := g.db.Create(&row).Error; err != nil {
		g.degrade("append message", err)
	}
}

// ListMessages returns messages in insertion order.
func (g *GormStore) ListMessages(userID, planID string) []domain.Message {
	var rows []MessageModel
	err := g.db.Where("user_id = ? AND study_plan_id = ?", userID, planID).
		Order("seq asc").Find(&rows).Error
	if err != nil {
		g.degrade("list messages", err)
		return []domain.Message{}
	}
	msgs := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, domain.Message{
			ID:          row.ID,
			UserID:      row.UserID,
			StudyPlanID: row.StudyPlanID,
			Type:        domain.MessageRole(row.Role),
			Content:     row.Content,
			Timestamp:   row.Timestamp,
		})
	}
	return msgs
}

// DeleteMessages removes all messages for the pair.
func (g *GormStore) DeleteMessages(userID, planID string) {
	if err := g.db.Where("user_id = ? AND study_plan_id = ?", userID, planID).
		Delete(&MessageModel{}).Error; err != nil {
		g.degrade("delete messages", err)
	}
}

// SaveGeneratedContent upserts the item by id.
func (g *GormStore) SaveGeneratedContent(item domain.GeneratedContent) {
	row := GeneratedContentModel{
		ID:          item.ID,
		UserID:      item.UserID,
		StudyPlanID: item.StudyPlanID,
		Type:        string(item.Type),
		Title:       item.Title,
		Data:        datatypes.JSON(item.Data),
		CreatedAt:   item.CreatedAt,
	}
	if err := g.db.Save(&row).Error; err != nil {
		g.degrade("save generated content", err)
	}
}

// ListGeneratedContent returns stored content oldest first.
func (g *GormStore) ListGeneratedContent(userID, planID string) []domain.GeneratedContent {
	var rows []GeneratedContentModel
	err := g.db.Where("user_id = ? AND study_plan_id = ?", userID, planID).
		Order("created_at asc").Find(&rows).Error
	if err != nil {
		g.degrade("list generated content", err)
		return []domain.GeneratedContent{}
	}
	items := make([]domain.GeneratedContent, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.GeneratedContent{
			ID:          row.ID,
			UserID:      row.UserID,
			StudyPlanID: row.StudyPlanID,
			Type:        domain.ContentType(row.Type),
			Title:       row.Title,
			Data:        []byte(row.Data),
			CreatedAt:   row.CreatedAt,
		})
	}
	return items
}

// DeleteGeneratedContent removes all content for the pair.
func (g *GormStore) DeleteGeneratedContent(userID, planID string) {
	if err := g.db.Where("user_id = ? AND study_plan_id = ?", userID, planID).
		Delete(&GeneratedContentModel{}).Error; err != nil {
		g.degrade("delete generated content", err)
	}
}

func (g *GormStore) degrade(op string, err error) {
	slog.Warn("storage degraded", "op", op, "err", err)
}

func planFromModel(row StudyPlanModel) domain.StudyPlan {
	return domain.StudyPlan{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
	}
}
