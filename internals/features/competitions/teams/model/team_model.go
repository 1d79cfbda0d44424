package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	awardModel "compaward_backend/internals/features/awards/awards/model"
	eventModel "compaward_backend/internals/features/competitions/events/model"
	userModel "compaward_backend/internals/features/users/users/model"
)

type TeamModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`

	EventID uuid.UUID                         `gorm:"type:uuid;not null;uniqueIndex:uq_teams_event_leader,priority:1;index:idx_teams_event;column:event_id" json:"event_id"`
	Event   *eventModel.CompetitionEventModel `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"event,omitempty"`

	Name string `gorm:"type:varchar(150);not null;column:name" json:"name"`

	LeaderID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:uq_teams_event_leader,priority:2;column:leader_id" json:"leader_id"`
	Leader   *userModel.UserModel `gorm:"foreignKey:LeaderID;constraint:OnDelete:RESTRICT" json:"leader,omitempty"`

	Members  []userModel.UserModel `gorm:"many2many:team_members;joinForeignKey:TeamID;joinReferences:MemberID" json:"members,omitempty"`
	Teachers []userModel.UserModel `gorm:"many2many:team_teachers;joinForeignKey:TeamID;joinReferences:TeacherID" json:"teachers,omitempty"`

	// Provisional files, owned by the team until conversion
	WorksKey      string `gorm:"type:varchar(500);column:works_key" json:"works_key,omitempty"`
	AttachmentKey string `gorm:"type:varchar(500);column:attachment_key" json:"attachment_key,omitempty"`

	AppliedAwardLevel string `gorm:"type:varchar(100);column:applied_award_level" json:"applied_award_level"`
	TempCertNo        string `gorm:"type:varchar(100);column:temp_cert_no" json:"temp_cert_no"`

	Status TeamStatus `gorm:"type:varchar(20);not null;index:idx_teams_status;column:status" json:"status"`

	ConvertedAwardID *uuid.UUID             `gorm:"type:uuid;uniqueIndex:uq_teams_converted_award;column:converted_award_id" json:"converted_award_id,omitempty"`
	ConvertedAward   *awardModel.AwardModel `gorm:"foreignKey:ConvertedAwardID;constraint:OnDelete:SET NULL" json:"converted_award,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (TeamModel) TableName() string { return "teams" }

func (t *TeamModel) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TeamDraft
	}
	t.Name = strings.TrimSpace(t.Name)
	return nil
}

// ParticipantIDs is leader first, then members.
func (t *TeamModel) ParticipantIDs() []uuid.UUID {
	out := []uuid.UUID{t.LeaderID}
	for _, m := range t.Members {
		if m.ID != t.LeaderID {
			out = append(out, m.ID)
		}
	}
	return out
}

func (t *TeamModel) HasMember(userID uuid.UUID) bool {
	for _, m := range t.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

func (t *TeamModel) HasTeacher(userID uuid.UUID) bool {
	for _, m := range t.Teachers {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// Join tables, declared for raw deletes and counts.
const (
	TableTeamMembers  = "team_members"
	TableTeamTeachers = "team_teachers"
)
