package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	awardModel "compaward_backend/internals/features/awards/awards/model"
	catalogModel "compaward_backend/internals/features/competitions/catalog/model"
	"compaward_backend/internals/features/competitions/events/dto"
	"compaward_backend/internals/features/competitions/events/model"
	teamModel "compaward_backend/internals/features/competitions/teams/model"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/authz"
)

const msgEventNotFound = "event not found"

var eventSortable = map[string]string{
	"start_time": "start_time",
	"end_time":   "end_time",
	"name":       "name",
	"created_at": "created_at",
}

// List applies stage visibility: callers without event.view_all never see archived events.
func List(ctx context.Context, db *gorm.DB, actor authz.Actor, f dto.EventFilter, p helper.Params) ([]model.CompetitionEventModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.CompetitionEventModel{})

	if s := strings.TrimSpace(f.CompetitionID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, 0, apperror.FieldError("competition_id", "competition_id is not a valid id")
		}
		q = q.Where("competition_id = ?", id)
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		st, ok := model.ParseEventStatus(s)
		if !ok {
			return nil, 0, apperror.FieldError("status", "unknown event status")
		}
		q = q.Where("status = ?", st)
	}
	if !authz.Can(actor, constants.ActionEventViewAll) {
		q = q.Where("status <> ?", model.EventArchived)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal(err, "count events")
	}
	var rows []model.CompetitionEventModel
	if err := q.Preload("Competition").
		Order(p.OrderClause(eventSortable, "start_time")).
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal(err, "list events")
	}
	return rows, total, nil
}

func Get(ctx context.Context, db *gorm.DB, actor authz.Actor, id uuid.UUID) (*model.CompetitionEventModel, error) {
	var m model.CompetitionEventModel
	if err := db.WithContext(ctx).Preload("Competition").First(&m, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, msgEventNotFound)
	}
	if m.Status.IsArchived() && !authz.Can(actor, constants.ActionEventViewAll) {
		return nil, apperror.NotFound(msgEventNotFound)
	}
	return &m, nil
}

func Create(ctx context.Context, db *gorm.DB, req dto.CreateEventRequest) (*model.CompetitionEventModel, error) {
	m := model.CompetitionEventModel{
		CompetitionID: req.CompetitionID,
		Name:          req.Name,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        model.EventRegistration,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&catalogModel.CompetitionModel{}).Where("id = ?", req.CompetitionID).Count(&n).Error; err != nil {
			return apperror.Internal(err, "check competition")
		}
		if n == 0 {
			return apperror.Reference("unknown competition", []string{"competition:" + req.CompetitionID.String()})
		}
		if err := tx.Create(&m).Error; err != nil {
			return apperror.FromDB(err, "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[EVENT] created %s (%s)", m.ID, m.Name)
	return &m, nil
}

func Update(ctx context.Context, db *gorm.DB, id uuid.UUID, req dto.UpdateEventRequest) (*model.CompetitionEventModel, error) {
	var m model.CompetitionEventModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockEvent(tx, id, &m); err != nil {
			return err
		}
		if m.Status.IsArchived() {
			return apperror.StateConflict("archived events cannot be edited", string(m.Status))
		}
		if req.Name != nil {
			m.Name = strings.TrimSpace(*req.Name)
		}
		if req.StartTime != nil {
			m.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			m.EndTime = *req.EndTime
		}
		if !m.EndTime.After(m.StartTime) {
			return apperror.FieldError("end_time", "end_time must be after start_time")
		}
		return tx.Model(&m).Updates(map[string]interface{}{
			"name":       m.Name,
			"start_time": m.StartTime,
			"end_time":   m.EndTime,
		}).Error
	})
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return &m, nil
}

// Delete removes an event that has no teams and no awards.
func Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.CompetitionEventModel
		if err := lockEvent(tx, id, &m); err != nil {
			return err
		}
		var teams, awards int64
		if err := tx.Model(&teamModel.TeamModel{}).Where("event_id = ?", id).Count(&teams).Error; err != nil {
			return apperror.Internal(err, "count teams")
		}
		if teams > 0 {
			return apperror.Integrity(fmt.Sprintf("event still has %d team(s)", teams), teams)
		}
		if err := tx.Model(&awardModel.AwardModel{}).Where("event_id = ?", id).Count(&awards).Error; err != nil {
			return apperror.Internal(err, "count awards")
		}
		if awards > 0 {
			return apperror.Integrity(fmt.Sprintf("event is referenced by %d award(s)", awards), awards)
		}
		if err := tx.Delete(&m).Error; err != nil {
			return apperror.FromDB(err, "")
		}
		log.Printf("[EVENT] deleted %s", id)
		return nil
	})
}
