package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"compaward_backend/internals/features/competitions/events/model"
)

type CreateEventRequest struct {
	CompetitionID uuid.UUID `json:"competition_id" validate:"required"`
	Name          string    `json:"name" validate:"required,notblank,max=255"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

func (r *CreateEventRequest) Normalize() { r.Name = strings.TrimSpace(r.Name) }

type UpdateEventRequest struct {
	Name      *string    `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=registration screening ongoing awarding archived"`
}

type EventFilter struct {
	CompetitionID string `query:"competition_id"`
	Status        string `query:"status"`
}

type EventResponse struct {
	ID                     uuid.UUID         `json:"id"`
	CompetitionID          uuid.UUID         `json:"competition_id"`
	CompetitionTitle       string            `json:"competition_title,omitempty"`
	Name                   string            `json:"name"`
	StartTime              time.Time         `json:"start_time"`
	EndTime                time.Time         `json:"end_time"`
	Status                 model.EventStatus `json:"status"`
	FinalParticipantsCount int               `json:"final_participants_count"`
	FinalWinnersCount      int               `json:"final_winners_count"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

func FromModel(m *model.CompetitionEventModel) EventResponse {
	out := EventResponse{
		ID:                     m.ID,
		CompetitionID:          m.CompetitionID,
		Name:                   m.Name,
		StartTime:              m.StartTime,
		EndTime:                m.EndTime,
		Status:                 m.Status,
		FinalParticipantsCount: m.FinalParticipantsCount,
		FinalWinnersCount:      m.FinalWinnersCount,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
	if m.Competition != nil {
		out.CompetitionTitle = m.Competition.Title
	}
	return out
}

func FromModels(rows []model.CompetitionEventModel) []EventResponse {
	out := make([]EventResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
