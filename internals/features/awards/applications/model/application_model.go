package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	awardModel "compaward_backend/internals/features/awards/awards/model"
	userModel "compaward_backend/internals/features/users/users/model"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	st := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return st, true
	}
	return st, false
}

type AwardApplicationModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`

	ApplicantID uuid.UUID            `gorm:"type:uuid;not null;index:idx_award_applications_applicant;column:applicant_id" json:"applicant_id"`
	Applicant   *userModel.UserModel `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE" json:"applicant,omitempty"`

	CertImageKey string    `gorm:"type:varchar(500);not null;column:cert_image_key" json:"cert_image_key"`
	CertNo       string    `gorm:"type:varchar(100);not null;column:cert_no" json:"cert_no"`
	AwardLevel   string    `gorm:"type:varchar(100);not null;column:award_level" json:"award_level"`
	AwardDate    time.Time `gorm:"type:date;not null;column:award_date" json:"award_date"`

	Payload datatypes.JSONType[ApplicationPayload] `gorm:"column:payload" json:"payload"`

	Status      ApplicationStatus `gorm:"type:varchar(20);not null;index:idx_award_applications_status;column:status" json:"status"`
	AdminRemark string            `gorm:"type:text;column:admin_remark" json:"admin_remark"`

	AwardID *uuid.UUID             `gorm:"type:uuid;column:award_id" json:"award_id,omitempty"`
	Award   *awardModel.AwardModel `gorm:"foreignKey:AwardID;constraint:OnDelete:SET NULL" json:"award,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (AwardApplicationModel) TableName() string { return "award_applications" }

func (a *AwardApplicationModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = ApplicationPending
	}
	return nil
}
