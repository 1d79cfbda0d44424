package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"compaward_backend/internals/features/competitions/teams/model"
	userDTO "compaward_backend/internals/features/users/users/dto"
)

/* ===================== REQUESTS ===================== */

type CreateTeamRequest struct {
	EventID    uuid.UUID `json:"event_id" validate:"required"`
	Name       string    `json:"name" validate:"required,notblank,max=150"`
	MemberIDs  []string  `json:"member_ids" validate:"max=20,dive,required,max=32"`
	TeacherIDs []string  `json:"teacher_ids" validate:"max=10,dive,required,max=32"`
}

func (r *CreateTeamRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.MemberIDs = trimIDs(r.MemberIDs)
	r.TeacherIDs = trimIDs(r.TeacherIDs)
}

// UpdateInfoRequest carries every editable field; which ones are accepted
// depends on the event stage.
type UpdateInfoRequest struct {
	Name              *string   `json:"name,omitempty" validate:"omitempty,notblank,max=150"`
	MemberIDs         *[]string `json:"member_ids,omitempty"`
	TeacherIDs        *[]string `json:"teacher_ids,omitempty"`
	TempCertNo        *string   `json:"temp_cert_no,omitempty" validate:"omitempty,max=100"`
	AppliedAwardLevel *string   `json:"applied_award_level,omitempty" validate:"omitempty,max=100"`
}

// Fields lists the json names present in the request.
func (r *UpdateInfoRequest) Fields() []string {
	var out []string
	if r.Name != nil {
		out = append(out, "name")
	}
	if r.MemberIDs != nil {
		out = append(out, "member_ids")
	}
	if r.TeacherIDs != nil {
		out = append(out, "teacher_ids")
	}
	if r.TempCertNo != nil {
		out = append(out, "temp_cert_no")
	}
	if r.AppliedAwardLevel != nil {
		out = append(out, "applied_award_level")
	}
	return out
}

type ReviewShortlistRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Reason string `json:"reason" validate:"max=1000"`
}

type ReviewAwardRequest struct {
	Action string `json:"action" validate:"required,oneof=award finish"`
}

type TeamFilter struct {
	EventID string `query:"event_id"`
	Status  string `query:"status"`
}

// FileInput is one uploaded part, already read into memory.
type FileInput struct {
	Filename string
	Data     []byte
}

type UploadFilesInput struct {
	Works      *FileInput
	Attachment *FileInput
}

func trimIDs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

/* ===================== RESPONSES ===================== */

type TeamResponse struct {
	ID                uuid.UUID           `json:"id"`
	EventID           uuid.UUID           `json:"event_id"`
	EventName         string              `json:"event_name,omitempty"`
	Name              string              `json:"name"`
	Leader            *userDTO.UserBrief  `json:"leader,omitempty"`
	Members           []userDTO.UserBrief `json:"members"`
	Teachers          []userDTO.UserBrief `json:"teachers"`
	WorksURL          string              `json:"works_url,omitempty"`
	AttachmentURL     string              `json:"attachment_url,omitempty"`
	AppliedAwardLevel string              `json:"applied_award_level"`
	TempCertNo        string              `json:"temp_cert_no"`
	Status            model.TeamStatus    `json:"status"`
	ConvertedAwardID  *uuid.UUID          `json:"converted_award_id,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// FromModel maps a team; url turns blob keys into public links.
func FromModel(m *model.TeamModel, url func(string) string) TeamResponse {
	out := TeamResponse{
		ID:                m.ID,
		EventID:           m.EventID,
		Name:              m.Name,
		Members:           userDTO.Briefs(m.Members),
		Teachers:          userDTO.Briefs(m.Teachers),
		AppliedAwardLevel: m.AppliedAwardLevel,
		TempCertNo:        m.TempCertNo,
		Status:            m.Status,
		ConvertedAwardID:  m.ConvertedAwardID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.Event != nil {
		out.EventName = m.Event.Name
	}
	if m.Leader != nil {
		b := userDTO.Brief(m.Leader)
		out.Leader = &b
	}
	if url != nil {
		if m.WorksKey != "" {
			out.WorksURL = url(m.WorksKey)
		}
		if m.AttachmentKey != "" {
			out.AttachmentURL = url(m.AttachmentKey)
		}
	}
	return out
}

func FromModels(rows []model.TeamModel, url func(string) string) []TeamResponse {
	out := make([]TeamResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i], url))
	}
	return out
}

type ParticipationResponse struct {
	IsLeader  bool       `json:"is_leader"`
	IsMember  bool       `json:"is_member"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	CanCreate bool       `json:"can_create"`
}
