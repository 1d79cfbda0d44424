package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	awardModel "compaward_backend/internals/features/awards/awards/model"
	"compaward_backend/internals/features/competitions/catalog/dto"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/testutil"
)

func TestDeleteCompetitionBlockedByAwards(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	comp := testutil.CreateCompetition(t, db, "Code Cup", 2024)

	for i := 0; i < 2; i++ {
		a := awardModel.AwardModel{
			CompetitionID: comp.ID,
			AwardLevel:    "First Prize",
			AwardDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, db.Create(&a).Error)
	}

	err := DeleteCompetition(ctx, db, comp.ID)
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindIntegrity, ae.Kind)
	assert.EqualValues(t, 2, ae.Blocking)

	_, err = GetCompetition(ctx, db, comp.ID)
	assert.NoError(t, err)
}

func TestDeleteCompetitionWithoutReferences(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	comp := testutil.CreateCompetition(t, db, "Lonely Cup", 2023)

	require.NoError(t, DeleteCompetition(ctx, db, comp.ID))
	_, err := GetCompetition(ctx, db, comp.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestDeleteCategoryInUse(t *testing.T) {
	db := testutil.NewDB(t)
	comp := testutil.CreateCompetition(t, db, "Robo Cup", 2024)

	err := DeleteCategory(context.Background(), db, comp.CategoryID)
	assert.True(t, apperror.Is(err, apperror.KindIntegrity))
}

func TestCreateCompetitionAggregatesMissingRefs(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := CreateCompetition(context.Background(), db, testutil.CreateUser(t, db, "C1").ID, dto.CreateCompetitionRequest{
		Title: "Ghost Cup", Year: 2024, CategoryID: 9999, LevelID: 8888,
	})
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindReference, ae.Kind)
	assert.Equal(t, []string{"category:9999", "level:8888"}, ae.Missing)
}

func TestResolveCompetitionGetOrCreate(t *testing.T) {
	db := testutil.NewDB(t)
	catID, levelID := testutil.FirstCategoryAndLevel(t, db)

	seed := CompetitionSeed{Title: "  Math Olympiad ", Year: 2025, CategoryID: catID, LevelID: levelID, Description: "first"}
	first, created, err := ResolveCompetition(db, seed)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Math Olympiad", first.Title)

	seed.Description = "second"
	again, created, err := ResolveCompetition(db, seed)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "first", again.Description)
}
