package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"compaward_backend/internals/features/competitions/catalog/model"
)

/* ===================== CATEGORY / LEVEL ===================== */

type CategoryRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

func (r *CategoryRequest) Normalize() { r.Name = strings.TrimSpace(r.Name) }

type LevelRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

func (r *LevelRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

/* ===================== COMPETITION ===================== */

type CreateCompetitionRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Year        int    `json:"year" validate:"required,min=1900,max=3000"`
	Description string `json:"description" validate:"max=5000"`
	URI         string `json:"uri" validate:"omitempty,url,max=500"`
	CategoryID  uint   `json:"category_id" validate:"required"`
	LevelID     uint   `json:"level_id" validate:"required"`
}

func (r *CreateCompetitionRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.URI = strings.TrimSpace(r.URI)
}

type UpdateCompetitionRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,notblank,max=255"`
	Year        *int    `json:"year,omitempty" validate:"omitempty,min=1900,max=3000"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	URI         *string `json:"uri,omitempty" validate:"omitempty,max=500"`
	CategoryID  *uint   `json:"category_id,omitempty"`
	LevelID     *uint   `json:"level_id,omitempty"`
}

type CompetitionFilter struct {
	Q          string `query:"q"`
	Year       int    `query:"year"`
	CategoryID uint   `query:"category_id"`
	LevelID    uint   `query:"level_id"`
}

type CompetitionResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Year        int        `json:"year"`
	Description string     `json:"description"`
	URI         string     `json:"uri"`
	CategoryID  uint       `json:"category_id"`
	Category    string     `json:"category,omitempty"`
	LevelID     uint       `json:"level_id"`
	Level       string     `json:"level,omitempty"`
	CreatorID   *uuid.UUID `json:"creator_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func FromCompetition(m *model.CompetitionModel) CompetitionResponse {
	out := CompetitionResponse{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year,
		Description: m.Description,
		URI:         m.URI,
		CategoryID:  m.CategoryID,
		LevelID:     m.LevelID,
		CreatorID:   m.CreatorID,
		CreatedAt:   m.CreatedAt,
	}
	if m.Category != nil {
		out.Category = m.Category.Name
	}
	if m.Level != nil {
		out.Level = m.Level.Name
	}
	return out
}

func FromCompetitions(ms []model.CompetitionModel) []CompetitionResponse {
	out := make([]CompetitionResponse, 0, len(ms))
	for i := range ms {
		out = append(out, FromCompetition(&ms[i]))
	}
	return out
}
