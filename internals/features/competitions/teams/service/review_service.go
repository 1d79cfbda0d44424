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
	awardService "compaward_backend/internals/features/awards/awards/service"
	catalogService "compaward_backend/internals/features/competitions/catalog/service"
	eventModel "compaward_backend/internals/features/competitions/events/model"
	"compaward_backend/internals/features/competitions/teams/model"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/authz"
	"compaward_backend/internals/helpers/dbtime"
)

const (
	ShortlistApprove = "approve"
	ShortlistReject  = "reject"

	AwardGrant  = "award"
	AwardFinish = "finish"
)

// teamGuard inspects the locked team and its event before a status change.
type teamGuard func(t *model.TeamModel, ev *eventModel.CompetitionEventModel) error

// changeStatus moves one team to `to`. The move must be allowed by the status
// table and the row is updated only if it still holds the status it was read with.
func (s *Service) changeStatus(ctx context.Context, teamID uuid.UUID, to model.TeamStatus, guard teamGuard) (*model.TeamModel, error) {
	var from model.TeamStatus
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, ev, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(t, ev); err != nil {
				return err
			}
		}
		if !t.Status.CanTransitionTo(to) {
			return apperror.StateConflict(fmt.Sprintf("team cannot move from %s to %s", t.Status, to), string(t.Status))
		}
		res := tx.Model(&model.TeamModel{}).
			Where("id = ? AND status = ?", t.ID, t.Status).
			Update("status", to)
		if res.Error != nil {
			return apperror.Internal(res.Error, "update team status")
		}
		if res.RowsAffected == 0 {
			return apperror.StateConflict("team status changed concurrently", string(t.Status))
		}
		from = t.Status
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[TEAM] %s %s -> %s", teamID, from, to)
	return loadTeam(s.DB.WithContext(ctx), teamID)
}

func notArchived(ev *eventModel.CompetitionEventModel) error {
	if ev.Status.IsArchived() {
		return apperror.StateConflict("the event is archived", string(ev.Status))
	}
	return nil
}

func (s *Service) notifyLeader(ctx context.Context, actor authz.Actor, t *model.TeamModel, verb string, target *notifService.Target, description string) {
	sender := actor.UserID
	if target == nil {
		target = &notifService.Target{Type: "team", ID: t.ID}
	}
	s.Notifier.Notify(ctx, notifService.Message{
		SenderID:    &sender,
		Recipients:  []uuid.UUID{t.LeaderID},
		Verb:        verb,
		Target:      target,
		Description: description,
	})
}

// SubmitRegistration: the leader hands in a draft or rejected team.
func (s *Service) SubmitRegistration(ctx context.Context, actor authz.Actor, teamID uuid.UUID) (*model.TeamModel, error) {
	return s.changeStatus(ctx, teamID, model.TeamSubmitted, func(t *model.TeamModel, ev *eventModel.CompetitionEventModel) error {
		if err := requireLeader(actor, t, "submit the registration"); err != nil {
			return err
		}
		if t.Status != model.TeamDraft && t.Status != model.TeamRejected {
			return apperror.StateConflict("only draft or rejected teams can be submitted", string(t.Status))
		}
		return notArchived(ev)
	})
}

// ReviewShortlist is the screening decision on a submitted team.
func (s *Service) ReviewShortlist(ctx context.Context, actor authz.Actor, teamID uuid.UUID, action, reason string) (*model.TeamModel, error) {
	if err := authz.Require(actor, constants.ActionTeamReview); err != nil {
		return nil, err
	}
	var to model.TeamStatus
	switch action {
	case ShortlistApprove:
		to = model.TeamShortlisted
	case ShortlistReject:
		to = model.TeamRejected
	default:
		return nil, apperror.FieldError("action", "action must be approve or reject")
	}

	t, err := s.changeStatus(ctx, teamID, to, func(t *model.TeamModel, ev *eventModel.CompetitionEventModel) error {
		if t.Status != model.TeamSubmitted {
			return apperror.StateConflict("only submitted teams can be screened", string(t.Status))
		}
		return notArchived(ev)
	})
	if err != nil {
		return nil, err
	}

	if to == model.TeamShortlisted {
		s.notifyLeader(ctx, actor, t, fmt.Sprintf("Your team %q passed screening and is shortlisted.", t.Name), nil, "")
	} else {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			reason = "none given"
		}
		s.notifyLeader(ctx, actor, t, fmt.Sprintf("Your team %q did not pass screening.", t.Name), nil, "Reason: "+reason)
	}
	return t, nil
}

func awardingGuard(t *model.TeamModel, ev *eventModel.CompetitionEventModel) error {
	if ev.Status != eventModel.EventAwarding {
		return apperror.StateConflict("the event is not in the awarding stage", string(ev.Status))
	}
	if t.Status != model.TeamShortlisted {
		return apperror.StateConflict("only shortlisted teams can be awarded or finished", string(t.Status))
	}
	return nil
}

// ReviewAward is the final decision on a shortlisted team: finish ends its
// run, award converts it into an award with its certificate.
func (s *Service) ReviewAward(ctx context.Context, actor authz.Actor, teamID uuid.UUID, action string) (*model.TeamModel, error) {
	if err := authz.Require(actor, constants.ActionTeamReview); err != nil {
		return nil, err
	}

	switch action {
	case AwardFinish:
		t, err := s.changeStatus(ctx, teamID, model.TeamEnded, awardingGuard)
		if err != nil {
			return nil, err
		}
		s.notifyLeader(ctx, actor, t, fmt.Sprintf("The competition run of your team %q has ended.", t.Name), nil, "")
		return t, nil
	case AwardGrant:
		return s.grantAward(ctx, actor, teamID)
	default:
		return nil, apperror.FieldError("action", "action must be award or finish")
	}
}

func (s *Service) grantAward(ctx context.Context, actor authz.Actor, teamID uuid.UUID) (*model.TeamModel, error) {
	db := s.DB.WithContext(ctx)
	t, err := loadTeam(db, teamID)
	if err != nil {
		return nil, err
	}
	if err := awardingGuard(t, t.Event); err != nil {
		return nil, err
	}

	fields := map[string][]string{}
	if strings.TrimSpace(t.TempCertNo) == "" {
		fields["temp_cert_no"] = []string{"certificate number is missing"}
	}
	if strings.TrimSpace(t.AttachmentKey) == "" {
		fields["attachment"] = []string{"certificate scan is missing"}
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("certificate information is incomplete", fields)
	}

	participants := []string{}
	if t.Leader != nil {
		participants = append(participants, t.Leader.InstitutionalID)
	}
	for _, m := range t.Members {
		participants = append(participants, m.InstitutionalID)
	}
	instructors := make([]string, 0, len(t.Teachers))
	for _, m := range t.Teachers {
		instructors = append(instructors, m.InstitutionalID)
	}

	competitionID := t.Event.CompetitionID
	eventID := t.EventID
	creator := actor.UserID

	res, err := s.Awards.Materialize(ctx, s.DB, awardService.Input{
		Competition:    catalogService.CompetitionSeed{ID: &competitionID},
		EventID:        &eventID,
		CertNo:         t.TempCertNo,
		SourceKey:      t.AttachmentKey,
		AwardLevel:     t.AppliedAwardLevel,
		AwardDate:      dbtime.Today(),
		CreatorID:      &creator,
		ParticipantIDs: participants,
		InstructorIDs:  instructors,
		Guard:          awardEvidenceGuard(t),
		MarkSource: func(tx *gorm.DB, award *awardModel.AwardModel) error {
			if !model.TeamShortlisted.CanTransitionTo(model.TeamAwarded) {
				return apperror.StateConflict("team cannot be awarded", string(model.TeamShortlisted))
			}
			r := tx.Model(&model.TeamModel{}).
				Where("id = ? AND status = ?", teamID, model.TeamShortlisted).
				Updates(map[string]interface{}{
					"status":             model.TeamAwarded,
					"converted_award_id": award.ID,
				})
			if r.Error != nil {
				return apperror.Internal(r.Error, "mark team awarded")
			}
			if r.RowsAffected == 0 {
				return apperror.StateConflict("team was reviewed concurrently", string(model.TeamShortlisted))
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[TEAM] %s awarded as %s", teamID, res.Award.ID)
	s.notifyLeader(ctx, actor, t,
		fmt.Sprintf("Your award application was approved. Level: %s.", t.AppliedAwardLevel),
		&notifService.Target{Type: "award", ID: res.Award.ID}, "")
	return loadTeam(db, teamID)
}

// awardEvidenceGuard locks the team and checks that the certificate evidence
// read before the transaction is still what the row holds. The roster is only
// editable during registration, so it cannot move while the event is awarding.
func awardEvidenceGuard(read *model.TeamModel) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		locked, ev, err := lockTeam(tx, read.ID)
		if err != nil {
			return err
		}
		if err := awardingGuard(locked, ev); err != nil {
			return err
		}
		if locked.TempCertNo != read.TempCertNo ||
			locked.AttachmentKey != read.AttachmentKey ||
			locked.AppliedAwardLevel != read.AppliedAwardLevel {
			return apperror.StateConflict("certificate details changed during review, try again", string(locked.Status))
		}
		return nil
	}
}

// ResetToDraft reopens an ended team for a new submission.
func (s *Service) ResetToDraft(ctx context.Context, actor authz.Actor, teamID uuid.UUID) (*model.TeamModel, error) {
	if err := authz.Require(actor, constants.ActionTeamReset); err != nil {
		return nil, err
	}
	t, err := s.changeStatus(ctx, teamID, model.TeamDraft, func(t *model.TeamModel, ev *eventModel.CompetitionEventModel) error {
		if err := notArchived(ev); err != nil {
			return err
		}
		if t.Status != model.TeamEnded {
			return apperror.StateConflict("only ended teams can be reset", string(t.Status))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyLeader(ctx, actor, t,
		fmt.Sprintf("An administrator reset your team %q to draft. You can edit and submit it again.", t.Name), nil, "")
	return t, nil
}
