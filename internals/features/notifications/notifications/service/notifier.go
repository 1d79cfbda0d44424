package service

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"compaward_backend/internals/features/notifications/notifications/model"
)

// Target points a notification at a domain row.
type Target struct {
	Type string
	ID   uuid.UUID
}

type Message struct {
	SenderID    *uuid.UUID
	Recipients  []uuid.UUID
	Verb        string
	Target      *Target
	Description string
}

// Notifier delivers messages best effort. Implementations log failures and
// never report them to the caller.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// Publisher is an optional push channel (Redis pub/sub).
type Publisher interface {
	Publish(ctx context.Context, n model.NotificationModel) error
}

// Mailer is an optional e-mail channel (SendGrid).
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// FanOutNotifier writes the inbox rows and then pushes to the optional channels.
type FanOutNotifier struct {
	DB        *gorm.DB
	Publisher Publisher
	Mailer    Mailer
}

func NewFanOutNotifier(db *gorm.DB, pub Publisher, mailer Mailer) *FanOutNotifier {
	return &FanOutNotifier{DB: db, Publisher: pub, Mailer: mailer}
}

func (f *FanOutNotifier) Notify(ctx context.Context, msg Message) {
	if f == nil || f.DB == nil || len(msg.Recipients) == 0 || strings.TrimSpace(msg.Verb) == "" {
		return
	}

	rows := make([]model.NotificationModel, 0, len(msg.Recipients))
	seen := make(map[uuid.UUID]struct{}, len(msg.Recipients))
	for _, r := range msg.Recipients {
		if r == uuid.Nil {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		n := model.NotificationModel{
			RecipientID: r,
			ActorID:     msg.SenderID,
			Verb:        msg.Verb,
			Description: msg.Description,
			Unread:      true,
		}
		if msg.Target != nil {
			id := msg.Target.ID
			n.TargetType = msg.Target.Type
			n.TargetID = &id
		}
		rows = append(rows, n)
	}
	if len(rows) == 0 {
		return
	}

	// The caller's request context may already be cancelled after commit.
	bg := context.WithoutCancel(ctx)
	if err := f.DB.WithContext(bg).Create(&rows).Error; err != nil {
		log.Printf("[NOTIFY] inbox write failed (verb=%q): %v", msg.Verb, err)
		return
	}

	if f.Publisher != nil {
		go func(rows []model.NotificationModel) {
			for _, n := range rows {
				if err := f.Publisher.Publish(bg, n); err != nil {
					log.Printf("[NOTIFY] publish to %s failed: %v", n.RecipientID, err)
				}
			}
		}(rows)
	}

	if f.Mailer != nil {
		go f.mail(bg, rows)
	}
}

func (f *FanOutNotifier) mail(ctx context.Context, rows []model.NotificationModel) {
	ids := make([]uuid.UUID, 0, len(rows))
	byID := make(map[uuid.UUID]model.NotificationModel, len(rows))
	for _, n := range rows {
		ids = append(ids, n.RecipientID)
		byID[n.RecipientID] = n
	}

	var recipients []struct {
		ID    uuid.UUID
		Email string
	}
	if err := f.DB.WithContext(ctx).
		Table("users").
		Select("id, email").
		Where("id IN ? AND email <> ''", ids).
		Scan(&recipients).Error; err != nil {
		log.Printf("[NOTIFY] load e-mail addresses failed: %v", err)
		return
	}
	for _, r := range recipients {
		n := byID[r.ID]
		body := n.Verb
		if n.Description != "" {
			body += "\n\n" + n.Description
		}
		if err := f.Mailer.Send(ctx, r.Email, n.Verb, body); err != nil {
			log.Printf("[NOTIFY] mail to %s failed: %v", r.Email, err)
		}
	}
}

// RecipientsWithRole returns the ids of active users holding the role.
func RecipientsWithRole(ctx context.Context, db *gorm.DB, role string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).
		Table("users u").
		Joins("JOIN user_roles ur ON ur.user_id = u.id").
		Joins("JOIN roles r ON r.id = ur.role_id").
		Where("r.name = ? AND u.is_active = ?", role, true).
		Distinct("u.id").
		Pluck("u.id", &ids).Error
	return ids, err
}

// Nop discards every message.
type Nop struct{}

func (Nop) Notify(context.Context, Message) {}
