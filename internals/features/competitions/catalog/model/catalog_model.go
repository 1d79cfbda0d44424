package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ========================= CATEGORY / LEVEL =========================

type CompetitionCategoryModel struct {
	ID   uint   `gorm:"primaryKey;column:id" json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex:uq_competition_categories_name;column:name" json:"name"`
}

func (CompetitionCategoryModel) TableName() string { return "competition_categories" }

type CompetitionLevelModel struct {
	ID          uint   `gorm:"primaryKey;column:id" json:"id"`
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex:uq_competition_levels_name;column:name" json:"name"`
	Description string `gorm:"type:text;column:description" json:"description"`
}

func (CompetitionLevelModel) TableName() string { return "competition_levels" }

// ========================= COMPETITION =========================

type CompetitionModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null;index:idx_competitions_title_year,priority:1;column:title" json:"title"`
	Year        int       `gorm:"not null;index:idx_competitions_title_year,priority:2;column:year" json:"year"`
	Description string    `gorm:"type:text;column:description" json:"description"`
	URI         string    `gorm:"type:varchar(500);column:uri" json:"uri"`

	CategoryID uint                      `gorm:"not null;column:category_id" json:"category_id"`
	Category   *CompetitionCategoryModel `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	LevelID    uint                      `gorm:"not null;column:level_id" json:"level_id"`
	Level      *CompetitionLevelModel    `gorm:"foreignKey:LevelID;constraint:OnDelete:RESTRICT" json:"level,omitempty"`

	CreatorID *uuid.UUID `gorm:"type:uuid;column:creator_id" json:"creator_id,omitempty"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (CompetitionModel) TableName() string { return "competitions" }

// ========================= Hooks =========================

func (m *CompetitionModel) ensureConsistency() error {
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return errors.New("competition title is required")
	}
	if m.Year < 1900 || m.Year > 3000 {
		return errors.New("competition year is out of range")
	}
	return nil
}

func (m *CompetitionModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return m.ensureConsistency()
}
