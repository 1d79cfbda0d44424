package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_recipient_unread,priority:1;column:recipient_id" json:"recipient_id"`
	ActorID     *uuid.UUID `gorm:"type:uuid;column:actor_id" json:"actor_id,omitempty"`

	Verb        string     `gorm:"type:varchar(255);not null;column:verb" json:"verb"`
	TargetType  string     `gorm:"type:varchar(50);column:target_type" json:"target_type,omitempty"`
	TargetID    *uuid.UUID `gorm:"type:uuid;column:target_id" json:"target_id,omitempty"`
	Description string     `gorm:"type:text;column:description" json:"description,omitempty"`
	Unread      bool       `gorm:"not null;index:idx_notifications_recipient_unread,priority:2;column:unread" json:"unread"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_notifications_created_at;column:created_at" json:"created_at"`
}

func (NotificationModel) TableName() string { return "notifications" }

func (n *NotificationModel) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
