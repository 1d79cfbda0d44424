package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	catalogModel "compaward_backend/internals/features/competitions/catalog/model"
)

// ========================= ENUMS =========================

type EventStatus string

const (
	EventRegistration EventStatus = "registration"
	EventScreening    EventStatus = "screening"
	EventOngoing      EventStatus = "ongoing"
	EventAwarding     EventStatus = "awarding"
	EventArchived     EventStatus = "archived"
)

// StageSequence is the advanceable order; archived is reached only through Archive.
var StageSequence = []EventStatus{
	EventRegistration,
	EventScreening,
	EventOngoing,
	EventAwarding,
}

var AllEventStatuses = append(append([]EventStatus{}, StageSequence...), EventArchived)

func ParseEventStatus(s string) (EventStatus, bool) {
	st := EventStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

func (s EventStatus) Valid() bool {
	for _, v := range AllEventStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Next returns the following stage. ok is false for awarding and archived.
func (s EventStatus) Next() (next EventStatus, ok bool) {
	for i, v := range StageSequence {
		if v == s && i+1 < len(StageSequence) {
			return StageSequence[i+1], true
		}
	}
	return "", false
}

func (s EventStatus) IsArchived() bool { return s == EventArchived }

// ========================= MODEL =========================

type CompetitionEventModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`

	CompetitionID uuid.UUID                      `gorm:"type:uuid;not null;index:idx_competition_events_competition;column:competition_id" json:"competition_id"`
	Competition   *catalogModel.CompetitionModel `gorm:"foreignKey:CompetitionID;constraint:OnDelete:RESTRICT" json:"competition,omitempty"`

	Name      string      `gorm:"type:varchar(255);not null;column:name" json:"name"`
	StartTime time.Time   `gorm:"not null;column:start_time" json:"start_time"`
	EndTime   time.Time   `gorm:"not null;column:end_time" json:"end_time"`
	Status    EventStatus `gorm:"type:varchar(20);not null;index:idx_competition_events_status;column:status" json:"status"`

	// Snapshot written once by Archive
	FinalParticipantsCount int `gorm:"not null;column:final_participants_count" json:"final_participants_count"`
	FinalWinnersCount      int `gorm:"not null;column:final_winners_count" json:"final_winners_count"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (CompetitionEventModel) TableName() string { return "competition_events" }

// ========================= Hooks (mirror CHECK constraints) =========================

func (e *CompetitionEventModel) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = EventRegistration
	}
	if !e.Status.Valid() {
		return errors.New("invalid event status")
	}
	if !e.EndTime.After(e.StartTime) {
		return errors.New("end_time must be after start_time")
	}
	return nil
}
