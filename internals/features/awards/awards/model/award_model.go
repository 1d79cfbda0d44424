package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	certModel "compaward_backend/internals/features/awards/certificates/model"
	catalogModel "compaward_backend/internals/features/competitions/catalog/model"
	eventModel "compaward_backend/internals/features/competitions/events/model"
	userModel "compaward_backend/internals/features/users/users/model"
)

type AwardModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`

	CompetitionID uuid.UUID                      `gorm:"type:uuid;not null;index:idx_awards_competition;column:competition_id" json:"competition_id"`
	Competition   *catalogModel.CompetitionModel `gorm:"foreignKey:CompetitionID;constraint:OnDelete:RESTRICT" json:"competition,omitempty"`

	EventID *uuid.UUID                        `gorm:"type:uuid;index:idx_awards_event;column:event_id" json:"event_id,omitempty"`
	Event   *eventModel.CompetitionEventModel `gorm:"foreignKey:EventID;constraint:OnDelete:SET NULL" json:"event,omitempty"`

	CertificateID *uuid.UUID                  `gorm:"type:uuid;uniqueIndex:uq_awards_certificate;column:certificate_id" json:"certificate_id,omitempty"`
	Certificate   *certModel.CertificateModel `gorm:"foreignKey:CertificateID;constraint:OnDelete:SET NULL" json:"certificate,omitempty"`

	Participants []userModel.UserModel `gorm:"many2many:award_participants;joinForeignKey:AwardID;joinReferences:ParticipantID" json:"participants,omitempty"`
	Instructors  []userModel.UserModel `gorm:"many2many:award_instructors;joinForeignKey:AwardID;joinReferences:InstructorID" json:"instructors,omitempty"`

	AwardLevel string    `gorm:"type:varchar(100);not null;column:award_level" json:"award_level"`
	AwardDate  time.Time `gorm:"type:date;not null;index:idx_awards_date;column:award_date" json:"award_date"`
	AwardYear  int       `gorm:"not null;index:idx_awards_year;column:award_year" json:"award_year"`

	CreatorID *uuid.UUID `gorm:"type:uuid;column:creator_id" json:"creator_id,omitempty"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (AwardModel) TableName() string { return "awards" }

// DefaultOrder for award listings.
const DefaultOrder = "award_date DESC, created_at DESC"

func (a *AwardModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps award_year in step with award_date.
func (a *AwardModel) BeforeSave(tx *gorm.DB) error {
	if !a.AwardDate.IsZero() {
		a.AwardYear = a.AwardDate.Year()
	}
	return nil
}

const (
	TableAwardParticipants = "award_participants"
	TableAwardInstructors  = "award_instructors"
)
