package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"compaward_backend/internals/features/awards/awards/model"
	userDTO "compaward_backend/internals/features/users/users/dto"
)

/* ===================== REQUEST ===================== */

type CreateAwardRequest struct {
	CompetitionID  uuid.UUID  `json:"competition_id" validate:"required"`
	EventID        *uuid.UUID `json:"event_id,omitempty"`
	AwardLevel     string     `json:"award_level" validate:"required,notblank,max=100"`
	AwardDate      string     `json:"award_date" validate:"required,datetime=2006-01-02"`
	ParticipantIDs []string   `json:"participant_ids" validate:"required,min=1,dive,required,max=32"`
	InstructorIDs  []string   `json:"instructor_ids" validate:"omitempty,dive,required,max=32"`
}

func (r *CreateAwardRequest) Normalize() {
	r.AwardLevel = strings.TrimSpace(r.AwardLevel)
	r.AwardDate = strings.TrimSpace(r.AwardDate)
}

type UpdateAwardRequest struct {
	AwardLevel     *string  `json:"award_level,omitempty" validate:"omitempty,notblank,max=100"`
	AwardDate      *string  `json:"award_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ParticipantIDs []string `json:"participant_ids,omitempty" validate:"omitempty,min=1,dive,required,max=32"`
	InstructorIDs  []string `json:"instructor_ids,omitempty" validate:"omitempty,dive,required,max=32"`
}

type AwardFilter struct {
	CompetitionID *uuid.UUID
	EventID       *uuid.UUID
	AwardLevel    string
	Participant   string // institutional id
	Year          int
}

/* ===================== RESPONSE ===================== */

type AwardResponse struct {
	ID               uuid.UUID           `json:"id"`
	CompetitionID    uuid.UUID           `json:"competition_id"`
	CompetitionTitle string              `json:"competition_title,omitempty"`
	EventID          *uuid.UUID          `json:"event_id,omitempty"`
	CertificateID    *uuid.UUID          `json:"certificate_id,omitempty"`
	CertNo           string              `json:"cert_no,omitempty"`
	CertImageURL     string              `json:"cert_image_url,omitempty"`
	AwardLevel       string              `json:"award_level"`
	AwardDate        string              `json:"award_date"`
	AwardYear        int                 `json:"award_year"`
	Participants     []userDTO.UserBrief `json:"participants"`
	Instructors      []userDTO.UserBrief `json:"instructors"`
	CreatorID        *uuid.UUID          `json:"creator_id,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

func FromModel(a *model.AwardModel) AwardResponse {
	out := AwardResponse{
		ID:            a.ID,
		CompetitionID: a.CompetitionID,
		EventID:       a.EventID,
		CertificateID: a.CertificateID,
		AwardLevel:    a.AwardLevel,
		AwardDate:     a.AwardDate.Format("2006-01-02"),
		AwardYear:     a.AwardYear,
		Participants:  userDTO.Briefs(a.Participants),
		Instructors:   userDTO.Briefs(a.Instructors),
		CreatorID:     a.CreatorID,
		CreatedAt:     a.CreatedAt,
	}
	if a.Competition != nil {
		out.CompetitionTitle = a.Competition.Title
	}
	if a.Certificate != nil {
		out.CertNo = a.Certificate.CertNo
		out.CertImageURL = a.Certificate.ImageURL
	}
	return out
}

func FromModels(as []model.AwardModel) []AwardResponse {
	out := make([]AwardResponse, 0, len(as))
	for i := range as {
		out = append(out, FromModel(&as[i]))
	}
	return out
}
