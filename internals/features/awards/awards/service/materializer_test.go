package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	awardModel "compaward_backend/internals/features/awards/awards/model"
	certModel "compaward_backend/internals/features/awards/certificates/model"
	catalogModel "compaward_backend/internals/features/competitions/catalog/model"
	catalogService "compaward_backend/internals/features/competitions/catalog/service"
	userService "compaward_backend/internals/features/users/users/service"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/storage"
	"compaward_backend/internals/testutil"
)

type materializeFixture struct {
	db    *gorm.DB
	store *storage.LocalStore
	m     *Materializer
	seed  catalogService.CompetitionSeed
}

func newMaterializeFixture(t *testing.T) materializeFixture {
	t.Helper()
	db := testutil.NewDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), "http://files.test")
	require.NoError(t, err)
	require.NoError(t, storage.PutBytes(context.Background(), store, "teams/x/attachment/scan.png", []byte("scan"), "image/png"))

	testutil.CreateUser(t, db, "S1", constants.RoleStudent)
	testutil.CreateUser(t, db, "T1", constants.RoleTeacher)
	catID, levelID := testutil.FirstCategoryAndLevel(t, db)

	m := NewMaterializer(store, userService.Resolver{})
	m.Now = func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) }
	return materializeFixture{
		db:    db,
		store: store,
		m:     m,
		seed:  catalogService.CompetitionSeed{Title: "Code Cup", Year: 2025, CategoryID: catID, LevelID: levelID},
	}
}

func (f materializeFixture) input(certNo string, participants ...string) Input {
	return Input{
		Competition:    f.seed,
		CertNo:         certNo,
		SourceKey:      "teams/x/attachment/scan.png",
		AwardLevel:     "First Prize",
		AwardDate:      time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
		ParticipantIDs: participants,
		InstructorIDs:  []string{"T1"},
	}
}

func TestMaterializeCreatesEverything(t *testing.T) {
	f := newMaterializeFixture(t)
	ctx := context.Background()

	marked := false
	in := f.input("CC-1", "S1")
	in.MarkSource = func(tx *gorm.DB, a *awardModel.AwardModel) error {
		marked = true
		return nil
	}
	res, err := f.m.Materialize(ctx, f.db, in)
	require.NoError(t, err)
	assert.True(t, marked)
	assert.True(t, res.CompetitionCreated)
	assert.Equal(t, "Code Cup", res.Award.Competition.Title)
	assert.Equal(t, 2025, res.Award.AwardYear)
	require.Len(t, res.Award.Participants, 1)
	require.Len(t, res.Award.Instructors, 1)

	key := res.Certificate.ImageKey
	assert.Equal(t, "certificate/2025/05/"+res.Certificate.ID.String()+".png", key)
	assert.Equal(t, "http://files.test/"+key, res.Certificate.ImageURL)
	data, err := storage.ReadAll(ctx, f.store, key)
	require.NoError(t, err)
	assert.Equal(t, "scan", string(data))

	// same title and year reuses the competition
	res2, err := f.m.Materialize(ctx, f.db, f.input("CC-2", "S1"))
	require.NoError(t, err)
	assert.False(t, res2.CompetitionCreated)
	assert.Equal(t, res.Award.CompetitionID, res2.Award.CompetitionID)
}

func TestMaterializeRollsBackOnUnknownUsers(t *testing.T) {
	f := newMaterializeFixture(t)
	ctx := context.Background()

	in := f.input("CC-1", "S1", "NOPE")
	in.InstructorIDs = []string{"T1", "GHOST"}
	_, err := f.m.Materialize(ctx, f.db, in)
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindReference, ae.Kind)
	assert.Equal(t, []string{"GHOST", "NOPE"}, ae.Missing)

	var n int64
	require.NoError(t, f.db.Model(&awardModel.AwardModel{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&certModel.CertificateModel{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&catalogModel.CompetitionModel{}).Count(&n).Error)
	assert.Zero(t, n)

	objs, err := f.store.List(ctx, "certificate/")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestMaterializeRejectsDuplicateCertNo(t *testing.T) {
	f := newMaterializeFixture(t)
	ctx := context.Background()

	_, err := f.m.Materialize(ctx, f.db, f.input("CC-1", "S1"))
	require.NoError(t, err)

	_, err = f.m.Materialize(ctx, f.db, f.input(" CC-1 ", "S1"))
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "cert_no")

	var n int64
	require.NoError(t, f.db.Model(&awardModel.AwardModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestMaterializeGuardAndValidation(t *testing.T) {
	f := newMaterializeFixture(t)
	ctx := context.Background()

	_, err := f.m.Materialize(ctx, f.db, Input{})
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	for _, field := range []string{"cert_no", "certificate", "award_level", "award_date", "participants"} {
		assert.Contains(t, ae.Fields, field)
	}

	in := f.input("CC-1", "S1")
	in.Guard = func(tx *gorm.DB) error {
		return apperror.StateConflict("team is not approved", "submitted")
	}
	_, err = f.m.Materialize(ctx, f.db, in)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))

	in = f.input("CC-1", "S1")
	in.SourceKey = "teams/x/attachment/gone.png"
	_, err = f.m.Materialize(ctx, f.db, in)
	ae, ok = apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Fields, "certificate")
}
