package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"compaward_backend/internals/constants"
	awardService "compaward_backend/internals/features/awards/awards/service"
	eventModel "compaward_backend/internals/features/competitions/events/model"
	"compaward_backend/internals/features/competitions/teams/dto"
	"compaward_backend/internals/features/competitions/teams/model"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	userModel "compaward_backend/internals/features/users/users/model"
	userService "compaward_backend/internals/features/users/users/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/authz"
	"compaward_backend/internals/helpers/storage"
)

const (
	msgTeamNotFound  = "team not found"
	msgEventNotFound = "event not found"
)

// Service drives team registration, review and conversion into awards.
type Service struct {
	DB       *gorm.DB
	Store    storage.BlobStore
	Notifier notifService.Notifier
	Awards   *awardService.Materializer
}

func NewService(db *gorm.DB, store storage.BlobStore, notifier notifService.Notifier) *Service {
	if notifier == nil {
		notifier = notifService.Nop{}
	}
	return &Service{
		DB:       db,
		Store:    store,
		Notifier: notifier,
		Awards:   awardService.NewMaterializer(store, userService.Resolver{}),
	}
}

// URL turns a blob key into a public link; nil-safe for responses.
func (s *Service) URL(key string) string {
	if s.Store == nil || key == "" {
		return ""
	}
	return s.Store.URL(key)
}

/* ===================== LOADING ===================== */

func preloadTeam(q *gorm.DB) *gorm.DB {
	return q.Preload("Event").
		Preload("Leader.Profile").
		Preload("Members.Profile").
		Preload("Teachers.Profile")
}

func loadTeam(tx *gorm.DB, id uuid.UUID) (*model.TeamModel, error) {
	var t model.TeamModel
	if err := preloadTeam(tx).First(&t, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, msgTeamNotFound)
	}
	return &t, nil
}

// lockTeam re-reads the bare team row FOR UPDATE together with its event.
func lockTeam(tx *gorm.DB, id uuid.UUID) (*model.TeamModel, *eventModel.CompetitionEventModel, error) {
	var t model.TeamModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, "id = ?", id).Error; err != nil {
		return nil, nil, apperror.FromDB(err, msgTeamNotFound)
	}
	var ev eventModel.CompetitionEventModel
	if err := tx.First(&ev, "id = ?", t.EventID).Error; err != nil {
		return nil, nil, apperror.FromDB(err, msgEventNotFound)
	}
	return &t, &ev, nil
}

func canSee(actor authz.Actor, t *model.TeamModel) bool {
	return authz.Can(actor, constants.ActionTeamViewAll) ||
		t.LeaderID == actor.UserID ||
		t.HasMember(actor.UserID) ||
		t.HasTeacher(actor.UserID)
}

func requireLeader(actor authz.Actor, t *model.TeamModel, what string) error {
	if t.LeaderID != actor.UserID {
		return apperror.Permission("only the team leader may " + what)
	}
	return nil
}

/* ===================== READ ===================== */

func (s *Service) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.TeamModel, error) {
	t, err := loadTeam(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !canSee(actor, t) {
		return nil, apperror.NotFound(msgTeamNotFound)
	}
	return t, nil
}

var teamSortable = map[string]string{
	"name":       "teams.name",
	"status":     "teams.status",
	"created_at": "teams.created_at",
	"updated_at": "teams.updated_at",
}

// List: staff see every team; everyone else sees teams they lead, belong to or instruct.
func (s *Service) List(ctx context.Context, actor authz.Actor, f dto.TeamFilter, p helper.Params) ([]model.TeamModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.TeamModel{})

	if v := strings.TrimSpace(f.EventID); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, 0, apperror.FieldError("event_id", "event_id is not a valid id")
		}
		q = q.Where("teams.event_id = ?", id)
	}
	if v := strings.TrimSpace(f.Status); v != "" {
		st, ok := model.ParseTeamStatus(v)
		if !ok {
			return nil, 0, apperror.FieldError("status", "unknown team status")
		}
		q = q.Where("teams.status = ?", st)
	}
	if !authz.Can(actor, constants.ActionTeamViewAll) {
		q = q.Where(
			"teams.leader_id = ? OR teams.id IN (SELECT team_id FROM "+model.TableTeamMembers+" WHERE member_id = ?) OR teams.id IN (SELECT team_id FROM "+model.TableTeamTeachers+" WHERE teacher_id = ?)",
			actor.UserID, actor.UserID, actor.UserID,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal(err, "count teams")
	}
	var rows []model.TeamModel
	if err := preloadTeam(q).
		Order(p.OrderClause(teamSortable, "created_at")).
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal(err, "list teams")
	}
	return rows, total, nil
}

// MyParticipation tells the caller where they stand in an event.
func (s *Service) MyParticipation(ctx context.Context, actor authz.Actor, eventID uuid.UUID) (*dto.ParticipationResponse, error) {
	db := s.DB.WithContext(ctx)

	var ev eventModel.CompetitionEventModel
	if err := db.First(&ev, "id = ?", eventID).Error; err != nil {
		return nil, apperror.FromDB(err, msgEventNotFound)
	}

	out := &dto.ParticipationResponse{}

	var led []uuid.UUID
	if err := db.Model(&model.TeamModel{}).
		Where("event_id = ? AND leader_id = ?", eventID, actor.UserID).
		Limit(1).Pluck("id", &led).Error; err != nil {
		return nil, apperror.Internal(err, "check leadership")
	}
	if len(led) > 0 {
		out.IsLeader = true
		out.TeamID = &led[0]
	}

	var member []uuid.UUID
	if err := db.Table(model.TableTeamMembers+" tm").
		Joins("JOIN teams t ON t.id = tm.team_id").
		Where("t.event_id = ? AND tm.member_id = ?", eventID, actor.UserID).
		Limit(1).Pluck("t.id", &member).Error; err != nil {
		return nil, apperror.Internal(err, "check membership")
	}
	if len(member) > 0 {
		out.IsMember = true
		if out.TeamID == nil {
			out.TeamID = &member[0]
		}
	}

	out.CanCreate = actor.HasRole(constants.RoleStudent) &&
		!out.IsLeader && !out.IsMember &&
		ev.Status == eventModel.EventRegistration
	return out, nil
}

/* ===================== CREATE / DELETE ===================== */

func (s *Service) Create(ctx context.Context, actor authz.Actor, req dto.CreateTeamRequest) (*model.TeamModel, error) {
	if err := authz.Require(actor, constants.ActionTeamCreate); err != nil {
		return nil, err
	}

	var teamID uuid.UUID
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ev eventModel.CompetitionEventModel
		if err := tx.First(&ev, "id = ?", req.EventID).Error; err != nil {
			return apperror.FromDB(err, msgEventNotFound)
		}
		if ev.Status != eventModel.EventRegistration {
			return apperror.StateConflict("teams can only be created while the event is in registration", string(ev.Status))
		}

		var n int64
		if err := tx.Model(&model.TeamModel{}).
			Where("event_id = ? AND leader_id = ?", ev.ID, actor.UserID).
			Count(&n).Error; err != nil {
			return apperror.Internal(err, "check leader")
		}
		if n > 0 {
			return apperror.FieldError("event_id", fmt.Sprintf("you already lead a team in %q", ev.Name))
		}

		members, teachers, err := resolveRoster(ctx, tx, actor.UserID, req.MemberIDs, req.TeacherIDs)
		if err != nil {
			return err
		}

		team := model.TeamModel{
			EventID:  ev.ID,
			Name:     req.Name,
			LeaderID: actor.UserID,
			Status:   model.TeamDraft,
		}
		if err := tx.Omit(clause.Associations).Create(&team).Error; err != nil {
			return apperror.FromDB(err, "")
		}
		if err := replaceLinks(tx, model.TableTeamMembers, "member_id", team.ID, members); err != nil {
			return err
		}
		if err := replaceLinks(tx, model.TableTeamTeachers, "teacher_id", team.ID, teachers); err != nil {
			return err
		}
		teamID = team.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[TEAM] created %s by %s", teamID, actor.UserID)
	return loadTeam(s.DB.WithContext(ctx), teamID)
}

// resolveRoster resolves member and teacher ids and enforces the roster rules:
// the leader is not a member and every teacher holds the Teacher role.
func resolveRoster(ctx context.Context, tx *gorm.DB, leaderID uuid.UUID, memberIDs, teacherIDs []string) ([]userModel.UserModel, []userModel.UserModel, error) {
	var missing []string
	members, err := userService.ResolveByInstitutionalIDs(ctx, tx, memberIDs)
	if err != nil {
		ae, ok := apperror.As(err)
		if !ok || ae.Kind != apperror.KindReference {
			return nil, nil, err
		}
		missing = append(missing, ae.Missing...)
	}
	teachers, err := userService.ResolveByInstitutionalIDs(ctx, tx, teacherIDs)
	if err != nil {
		ae, ok := apperror.As(err)
		if !ok || ae.Kind != apperror.KindReference {
			return nil, nil, err
		}
		missing = append(missing, ae.Missing...)
	}
	if len(missing) > 0 {
		return nil, nil, apperror.Reference("unknown user ids", missing)
	}

	fields := map[string][]string{}
	for _, m := range members {
		if m.ID == leaderID {
			fields["member_ids"] = append(fields["member_ids"], "the leader cannot also be a member")
		}
	}
	for _, t := range teachers {
		if !t.HasRole(constants.RoleTeacher) {
			fields["teacher_ids"] = append(fields["teacher_ids"], t.InstitutionalID+" is not a teacher")
		}
	}
	if len(fields) > 0 {
		return nil, nil, apperror.Validation("invalid team roster", fields)
	}
	return members, teachers, nil
}

// replaceLinks rewrites one of the team join tables.
func replaceLinks(tx *gorm.DB, table, col string, teamID uuid.UUID, users []userModel.UserModel) error {
	if err := tx.Exec("DELETE FROM "+table+" WHERE team_id = ?", teamID).Error; err != nil {
		return apperror.Internal(err, "clear "+table)
	}
	if len(users) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		rows = append(rows, map[string]interface{}{"team_id": teamID, col: u.ID})
	}
	if err := tx.Table(table).Create(&rows).Error; err != nil {
		return apperror.Internal(err, "link "+table)
	}
	return nil
}

// Delete is open to the leader and to staff while the team is still a draft.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	var keys []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, _, err := lockTeam(tx, id)
		if err != nil {
			return err
		}
		if t.LeaderID != actor.UserID && !authz.Can(actor, constants.ActionTeamViewAll) {
			return apperror.Permission("only the team leader may delete the team")
		}
		if t.Status != model.TeamDraft {
			return apperror.StateConflict("only draft teams can be deleted", string(t.Status))
		}
		for _, table := range []string{model.TableTeamMembers, model.TableTeamTeachers} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE team_id = ?", id).Error; err != nil {
				return apperror.Internal(err, "clear "+table)
			}
		}
		if err := tx.Delete(&model.TeamModel{}, "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, "")
		}
		keys = []string{t.WorksKey, t.AttachmentKey}
		return nil
	})
	if err != nil {
		return err
	}
	if s.Store != nil {
		storage.DeleteQuietly(context.WithoutCancel(ctx), s.Store, keys...)
	}
	log.Printf("[TEAM] deleted %s by %s", id, actor.UserID)
	return nil
}
