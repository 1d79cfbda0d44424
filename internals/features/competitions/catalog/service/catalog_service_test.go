package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compaward_backend/internals/features/competitions/catalog/dto"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/testutil"
)

func TestCategoryNamesAreUnique(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	c, err := CreateCategory(ctx, db, dto.CategoryRequest{Name: "Chess"})
	require.NoError(t, err)

	_, err = CreateCategory(ctx, db, dto.CategoryRequest{Name: "chess"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	renamed, err := UpdateCategory(ctx, db, c.ID, dto.CategoryRequest{Name: "Chess"})
	require.NoError(t, err)
	assert.Equal(t, c.ID, renamed.ID)

	require.NoError(t, DeleteCategory(ctx, db, c.ID))
}

func TestLevelCRUD(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	l, err := CreateLevel(ctx, db, dto.LevelRequest{Name: "Regional", Description: "regional round"})
	require.NoError(t, err)

	l, err = UpdateLevel(ctx, db, l.ID, dto.LevelRequest{Name: "Regional", Description: "updated"})
	require.NoError(t, err)
	assert.Equal(t, "updated", l.Description)

	require.NoError(t, DeleteLevel(ctx, db, l.ID))
	err = DeleteLevel(ctx, db, l.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
