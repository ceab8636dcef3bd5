package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models for the relational store variant.

type UserModel struct {
	ID        string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

type StudyPlanModel struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	CreatedAt   time.Time `gorm:"not null"`
}

type MessageModel struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"not null;index:idx_messages_pair"`
	StudyPlanID string `gorm:"not null;index:idx_messages_pair"`
	Role        string `gorm:"not null"`
	Content     string `gorm:"not null"`
	Timestamp   time.Time `gorm:"not null;index"`
	Seq         int64     `gorm:"autoIncrement;index"`
}

type GeneratedContentModel struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"not null;index:idx_content_pair"`
	StudyPlanID string `gorm:"not null;index:idx_content_pair"`
	Type        string `gorm:"not null"`
	Title       string
	Data        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"not null"`
}
