package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	awardModel "compaward_backend/internals/features/awards/awards/model"
	"compaward_backend/internals/features/competitions/events/model"
	teamModel "compaward_backend/internals/features/competitions/teams/model"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/storage"
)

func lockEvent(tx *gorm.DB, id uuid.UUID, out *model.CompetitionEventModel) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(out, "id = ?", id).Error
	return apperror.FromDB(err, msgEventNotFound)
}

// AdvanceStage moves the event one stage forward. Leaving registration keeps
// only the shortlisted teams (reset to draft for the next round) and ends all
// others.
func AdvanceStage(ctx context.Context, db *gorm.DB, eventID uuid.UUID) (*model.CompetitionEventModel, error) {
	var ev model.CompetitionEventModel
	var kept, ended int64

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockEvent(tx, eventID, &ev); err != nil {
			return err
		}
		if ev.Status == model.EventAwarding {
			return apperror.StateConflict("awarding is the last stage; archive the event instead", string(ev.Status))
		}
		next, ok := ev.Status.Next()
		if !ok {
			return apperror.StateConflict("event cannot advance from "+string(ev.Status), string(ev.Status))
		}

		if ev.Status == model.EventRegistration {
			var shortlisted []uuid.UUID
			if err := tx.Model(&teamModel.TeamModel{}).
				Where("event_id = ? AND status = ?", eventID, teamModel.TeamShortlisted).
				Pluck("id", &shortlisted).Error; err != nil {
				return apperror.Internal(err, "pluck shortlisted teams")
			}

			if len(shortlisted) > 0 {
				res := tx.Model(&teamModel.TeamModel{}).
					Where("id IN ?", shortlisted).
					Update("status", teamModel.TeamDraft)
				if res.Error != nil {
					return apperror.Internal(res.Error, "reset shortlisted teams")
				}
				kept = res.RowsAffected
			}

			q := tx.Model(&teamModel.TeamModel{}).Where("event_id = ?", eventID)
			if len(shortlisted) > 0 {
				q = q.Where("id NOT IN ?", shortlisted)
			}
			res := q.Update("status", teamModel.TeamEnded)
			if res.Error != nil {
				return apperror.Internal(res.Error, "end remaining teams")
			}
			ended = res.RowsAffected
		}

		if err := tx.Model(&ev).Update("status", next).Error; err != nil {
			return apperror.Internal(err, "advance event")
		}
		ev.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[EVENT] %s advanced to %s (kept=%d ended=%d)", ev.ID, ev.Status, kept, ended)
	return &ev, nil
}

// SetStatus is the administrative override; only the enum is checked.
func SetStatus(ctx context.Context, db *gorm.DB, eventID uuid.UUID, target model.EventStatus) (*model.CompetitionEventModel, error) {
	if !target.Valid() {
		return nil, apperror.FieldError("status", "unknown event status")
	}
	var ev model.CompetitionEventModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockEvent(tx, eventID, &ev); err != nil {
			return err
		}
		if err := tx.Model(&ev).Update("status", target).Error; err != nil {
			return apperror.Internal(err, "set event status")
		}
		ev.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[EVENT] %s status set to %s", ev.ID, ev.Status)
	return &ev, nil
}

// Archive freezes the final counts, marks the event archived and purges its
// teams. Provisional team files are removed after commit.
func Archive(ctx context.Context, db *gorm.DB, store storage.BlobStore, eventID uuid.UUID) (*model.CompetitionEventModel, error) {
	var ev model.CompetitionEventModel
	var fileKeys []string

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockEvent(tx, eventID, &ev); err != nil {
			return err
		}
		if ev.Status != model.EventAwarding {
			return apperror.StateConflict("only events in the awarding stage can be archived", string(ev.Status))
		}

		participants, err := countFinalParticipants(tx, eventID)
		if err != nil {
			return err
		}
		winners, err := countWinners(tx, eventID)
		if err != nil {
			return err
		}

		if err := tx.Model(&ev).Updates(map[string]interface{}{
			"final_participants_count": participants,
			"final_winners_count":      winners,
			"status":                   model.EventArchived,
		}).Error; err != nil {
			return apperror.Internal(err, "archive event")
		}
		ev.FinalParticipantsCount = int(participants)
		ev.FinalWinnersCount = int(winners)
		ev.Status = model.EventArchived

		var teams []teamModel.TeamModel
		if err := tx.Select("id", "works_key", "attachment_key").
			Where("event_id = ?", eventID).Find(&teams).Error; err != nil {
			return apperror.Internal(err, "load teams")
		}
		if len(teams) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(teams))
		for _, t := range teams {
			ids = append(ids, t.ID)
			fileKeys = append(fileKeys, t.WorksKey, t.AttachmentKey)
		}
		return PurgeTeams(tx, ids)
	})
	if err != nil {
		return nil, err
	}

	if store != nil && len(fileKeys) > 0 {
		storage.DeleteQuietly(context.WithoutCancel(ctx), store, fileKeys...)
	}
	log.Printf("[EVENT] %s archived (participants=%d winners=%d)", ev.ID, ev.FinalParticipantsCount, ev.FinalWinnersCount)
	return &ev, nil
}

// PurgeTeams deletes teams together with their member and teacher rows.
func PurgeTeams(tx *gorm.DB, teamIDs []uuid.UUID) error {
	if len(teamIDs) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM "+teamModel.TableTeamMembers+" WHERE team_id IN ?", teamIDs).Error; err != nil {
		return apperror.Internal(err, "delete team members")
	}
	if err := tx.Exec("DELETE FROM "+teamModel.TableTeamTeachers+" WHERE team_id IN ?", teamIDs).Error; err != nil {
		return apperror.Internal(err, "delete team teachers")
	}
	if err := tx.Where("id IN ?", teamIDs).Delete(&teamModel.TeamModel{}).Error; err != nil {
		return apperror.Internal(err, "delete teams")
	}
	return nil
}

var finalStatuses = []teamModel.TeamStatus{
	teamModel.TeamShortlisted,
	teamModel.TeamAwarded,
	teamModel.TeamEnded,
}

// countFinalParticipants is |leaders ∪ members| over teams in a final status.
func countFinalParticipants(tx *gorm.DB, eventID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Raw(`
		SELECT COUNT(*) FROM (
			SELECT t.leader_id AS uid FROM teams t
			WHERE t.event_id = ? AND t.status IN ?
			UNION
			SELECT tm.member_id AS uid FROM `+teamModel.TableTeamMembers+` tm
			JOIN teams t ON t.id = tm.team_id
			WHERE t.event_id = ? AND t.status IN ?
		) people`, eventID, finalStatuses, eventID, finalStatuses).Scan(&n).Error
	if err != nil {
		return 0, apperror.Internal(err, "count final participants")
	}
	return n, nil
}

func countWinners(tx *gorm.DB, eventID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Table(awardModel.TableAwardParticipants+" ap").
		Joins("JOIN awards a ON a.id = ap.award_id").
		Where("a.event_id = ?", eventID).
		Distinct("ap.participant_id").
		Count(&n).Error
	if err != nil {
		return 0, apperror.Internal(err, "count winners")
	}
	return n, nil
}
