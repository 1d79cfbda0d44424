package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"compaward_backend/internals/features/awards/applications/model"
	userDTO "compaward_backend/internals/features/users/users/dto"
)

// CertImage is the uploaded certificate scan.
type CertImage struct {
	Filename string
	Data     []byte
}

// ApplyRequest is read from multipart form values; payload is a JSON document.
type ApplyRequest struct {
	CertNo     string                   `json:"cert_no" validate:"required,notblank,max=100"`
	AwardLevel string                   `json:"award_level" validate:"required,notblank,max=100"`
	AwardDate  string                   `json:"award_date" validate:"required,datetime=2006-01-02"`
	Payload    model.ApplicationPayload `json:"payload"`
}

func (r *ApplyRequest) Normalize() {
	r.CertNo = strings.TrimSpace(r.CertNo)
	r.AwardLevel = strings.TrimSpace(r.AwardLevel)
	r.AwardDate = strings.TrimSpace(r.AwardDate)
	r.Payload = r.Payload.Normalized()
}

type UpdateApplicationRequest struct {
	CertNo     *string                   `json:"cert_no,omitempty" validate:"omitempty,notblank,max=100"`
	AwardLevel *string                   `json:"award_level,omitempty" validate:"omitempty,notblank,max=100"`
	AwardDate  *string                   `json:"award_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Payload    *model.ApplicationPayload `json:"payload,omitempty"`
}

type RejectRequest struct {
	Remark string `json:"remark" validate:"max=2000"`
}

type ApplicationFilter struct {
	Status string `query:"status"`
}

type ApplicationResponse struct {
	ID           uuid.UUID                `json:"id"`
	Applicant    *userDTO.UserBrief       `json:"applicant,omitempty"`
	CertNo       string                   `json:"cert_no"`
	CertImageURL string                   `json:"cert_image_url"`
	AwardLevel   string                   `json:"award_level"`
	AwardDate    string                   `json:"award_date"`
	Payload      model.ApplicationPayload `json:"payload"`
	Status       model.ApplicationStatus  `json:"status"`
	AdminRemark  string                   `json:"admin_remark"`
	AwardID      *uuid.UUID               `json:"award_id,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

func FromModel(m *model.AwardApplicationModel, url func(string) string) ApplicationResponse {
	out := ApplicationResponse{
		ID:          m.ID,
		CertNo:      m.CertNo,
		AwardLevel:  m.AwardLevel,
		AwardDate:   m.AwardDate.Format("2006-01-02"),
		Payload:     m.Payload.Data(),
		Status:      m.Status,
		AdminRemark: m.AdminRemark,
		AwardID:     m.AwardID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Applicant != nil {
		b := userDTO.Brief(m.Applicant)
		out.Applicant = &b
	}
	if url != nil {
		out.CertImageURL = url(m.CertImageKey)
	}
	return out
}

func FromModels(rows []model.AwardApplicationModel, url func(string) string) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i], url))
	}
	return out
}
