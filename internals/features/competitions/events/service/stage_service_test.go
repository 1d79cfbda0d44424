package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	awardModel "compaward_backend/internals/features/awards/awards/model"
	"compaward_backend/internals/features/competitions/events/dto"
	"compaward_backend/internals/features/competitions/events/model"
	teamModel "compaward_backend/internals/features/competitions/teams/model"
	userModel "compaward_backend/internals/features/users/users/model"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/storage"
	"compaward_backend/internals/testutil"
)

func createTeam(t *testing.T, db *gorm.DB, eventID uuid.UUID, leader userModel.UserModel, status teamModel.TeamStatus, members ...userModel.UserModel) teamModel.TeamModel {
	t.Helper()
	team := teamModel.TeamModel{
		EventID:  eventID,
		Name:     "Team " + leader.InstitutionalID,
		LeaderID: leader.ID,
		Members:  members,
		Status:   status,
	}
	require.NoError(t, db.Omit("Members.*").Create(&team).Error)
	return team
}

func teamStatuses(t *testing.T, db *gorm.DB, eventID uuid.UUID) map[teamModel.TeamStatus]int {
	t.Helper()
	var teams []teamModel.TeamModel
	require.NoError(t, db.Where("event_id = ?", eventID).Find(&teams).Error)
	out := map[teamModel.TeamStatus]int{}
	for _, tm := range teams {
		out[tm.Status]++
	}
	return out
}

func TestAdvanceStageFromRegistration(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	comp := testutil.CreateCompetition(t, db, "Robotics", 2025)
	ev := testutil.CreateEvent(t, db, comp.ID, model.EventRegistration)

	statuses := []teamModel.TeamStatus{
		teamModel.TeamShortlisted, teamModel.TeamShortlisted,
		teamModel.TeamDraft, teamModel.TeamSubmitted, teamModel.TeamRejected,
	}
	for i, st := range statuses {
		leader := testutil.CreateUser(t, db, "S"+string(rune('0'+i)), constants.RoleStudent)
		createTeam(t, db, ev.ID, leader, st)
	}

	got, err := AdvanceStage(ctx, db, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventScreening, got.Status)

	counts := teamStatuses(t, db, ev.ID)
	assert.Equal(t, 2, counts[teamModel.TeamDraft])
	assert.Equal(t, 3, counts[teamModel.TeamEnded])
	assert.Zero(t, counts[teamModel.TeamShortlisted])
}

func TestAdvanceStageLeavesTeamsAloneAfterRegistration(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	comp := testutil.CreateCompetition(t, db, "Robotics", 2025)
	ev := testutil.CreateEvent(t, db, comp.ID, model.EventScreening)
	leader := testutil.CreateUser(t, db, "S1", constants.RoleStudent)
	createTeam(t, db, ev.ID, leader, teamModel.TeamSubmitted)

	got, err := AdvanceStage(ctx, db, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventOngoing, got.Status)
	assert.Equal(t, 1, teamStatuses(t, db, ev.ID)[teamModel.TeamSubmitted])
}

func TestAdvanceStageStopsAtAwarding(t *testing.T) {
	db := testutil.NewDB(t)
	comp := testutil.CreateCompetition(t, db, "Robotics", 2025)

	for _, st := range []model.EventStatus{model.EventAwarding, model.EventArchived} {
		ev := testutil.CreateEvent(t, db, comp.ID, st)
		_, err := AdvanceStage(context.Background(), db, ev.ID)
		assert.True(t, apperror.Is(err, apperror.KindStateConflict), "status %s", st)
	}
}

func TestArchiveFreezesCountsAndPurgesTeams(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	store, err := storage.NewLocalStore(t.TempDir(), "http://files.test")
	require.NoError(t, err)

	comp := testutil.CreateCompetition(t, db, "Math", 2025)
	ev := testutil.CreateEvent(t, db, comp.ID, model.EventAwarding)

	a := testutil.CreateUser(t, db, "A", constants.RoleStudent)
	b := testutil.CreateUser(t, db, "B", constants.RoleStudent)
	c := testutil.CreateUser(t, db, "C", constants.RoleStudent)
	d := testutil.CreateUser(t, db, "D", constants.RoleStudent)
	e := testutil.CreateUser(t, db, "E", constants.RoleStudent)

	// a leads with b; c leads with b again; d ended alone; e is still a draft and does not count
	t1 := createTeam(t, db, ev.ID, a, teamModel.TeamAwarded, b)
	createTeam(t, db, ev.ID, c, teamModel.TeamShortlisted, b)
	createTeam(t, db, ev.ID, d, teamModel.TeamEnded)
	createTeam(t, db, ev.ID, e, teamModel.TeamDraft)

	worksKey := storage.TeamFileKey(t1.ID, "works", "robot.zip")
	require.NoError(t, storage.PutBytes(ctx, store, worksKey, []byte("zip"), "application/zip"))
	require.NoError(t, db.Model(&t1).Update("works_key", worksKey).Error)

	award := awardModel.AwardModel{CompetitionID: comp.ID, EventID: &ev.ID, AwardLevel: "First", AwardDate: time.Now()}
	require.NoError(t, db.Create(&award).Error)
	require.NoError(t, db.Exec("INSERT INTO award_participants (award_id, participant_id) VALUES (?, ?), (?, ?)",
		award.ID, a.ID, award.ID, b.ID).Error)

	got, err := Archive(ctx, db, store, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventArchived, got.Status)
	assert.Equal(t, 4, got.FinalParticipantsCount)
	assert.Equal(t, 2, got.FinalWinnersCount)

	var stored model.CompetitionEventModel
	require.NoError(t, db.First(&stored, "id = ?", ev.ID).Error)
	assert.Equal(t, 4, stored.FinalParticipantsCount)
	assert.Equal(t, 2, stored.FinalWinnersCount)

	var teams, members int64
	require.NoError(t, db.Model(&teamModel.TeamModel{}).Where("event_id = ?", ev.ID).Count(&teams).Error)
	require.NoError(t, db.Table(teamModel.TableTeamMembers).Count(&members).Error)
	assert.Zero(t, teams)
	assert.Zero(t, members)

	_, err = storage.ReadAll(ctx, store, worksKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = Archive(ctx, db, store, ev.ID)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
}

func TestArchiveRequiresAwarding(t *testing.T) {
	db := testutil.NewDB(t)
	comp := testutil.CreateCompetition(t, db, "Math", 2025)
	ev := testutil.CreateEvent(t, db, comp.ID, model.EventOngoing)

	_, err := Archive(context.Background(), db, nil, ev.ID)
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindStateConflict, ae.Kind)
	assert.Equal(t, string(model.EventOngoing), ae.CurrentStatus)
}

func TestSetStatusOverride(t *testing.T) {
	db := testutil.NewDB(t)
	comp := testutil.CreateCompetition(t, db, "Math", 2025)
	ev := testutil.CreateEvent(t, db, comp.ID, model.EventArchived)

	got, err := SetStatus(context.Background(), db, ev.ID, model.EventRegistration)
	require.NoError(t, err)
	assert.Equal(t, model.EventRegistration, got.Status)

	_, err = SetStatus(context.Background(), db, ev.ID, model.EventStatus("paused"))
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestStudentsDoNotSeeArchivedEvents(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	comp := testutil.CreateCompetition(t, db, "Math", 2025)
	testutil.CreateEvent(t, db, comp.ID, model.EventRegistration)
	archived := testutil.CreateEvent(t, db, comp.ID, model.EventArchived)

	student := testutil.Actor(testutil.CreateUser(t, db, "S1", constants.RoleStudent))
	teacher := testutil.Actor(testutil.CreateUser(t, db, "T1", constants.RoleTeacher))
	p := helper.Params{Page: 1, PerPage: 10, SortOrder: "desc"}

	_, total, err := List(ctx, db, student, dto.EventFilter{}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = List(ctx, db, teacher, dto.EventFilter{}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, err = Get(ctx, db, student, archived.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, _, err = List(ctx, db, teacher, dto.EventFilter{Status: "paused"}, p)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestDeleteEventWithTeamsIsBlocked(t *testing.T) {
	db := testutil.NewDB(t)
	comp := testutil.CreateCompetition(t, db, "Math", 2025)
	ev := testutil.CreateEvent(t, db, comp.ID, model.EventRegistration)
	createTeam(t, db, ev.ID, testutil.CreateUser(t, db, "S1", constants.RoleStudent), teamModel.TeamDraft)

	err := Delete(context.Background(), db, ev.ID)
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindIntegrity, ae.Kind)
	assert.EqualValues(t, 1, ae.Blocking)
}
