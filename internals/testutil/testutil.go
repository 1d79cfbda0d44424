// Package testutil builds an in-memory SQLite schema and fixtures for service tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	database "compaward_backend/internals/databases"
	catalogModel "compaward_backend/internals/features/competitions/catalog/model"
	eventModel "compaward_backend/internals/features/competitions/events/model"
	userModel "compaward_backend/internals/features/users/users/model"
	"compaward_backend/internals/helpers/authz"
	"compaward_backend/internals/seeds/catalog"
	"compaward_backend/internals/seeds/roles"
)

// NewDB returns a migrated and seeded database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, roles.SeedRoles(db))
	require.NoError(t, catalog.SeedCatalog(db))
	return db
}

// CreateUser inserts an active user with a profile and the given roles.
func CreateUser(t *testing.T, db *gorm.DB, institutionalID string, roleNames ...string) userModel.UserModel {
	t.Helper()
	var rs []userModel.RoleModel
	if len(roleNames) > 0 {
		require.NoError(t, db.Where("name IN ?", roleNames).Find(&rs).Error)
		require.Len(t, rs, len(roleNames))
	}
	u := userModel.UserModel{
		InstitutionalID: institutionalID,
		Username:        "u" + institutionalID,
		PasswordHash:    "x",
		IsActive:        true,
		Roles:           rs,
		Profile: &userModel.UserProfileModel{
			RealName:   "Name " + institutionalID,
			Department: "Computing",
			Major:      "Software",
			Clazz:      "C1",
		},
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func Actor(u userModel.UserModel) authz.Actor {
	return authz.Actor{UserID: u.ID, Roles: u.RoleNames()}
}

// FirstCategoryAndLevel returns the ids of any seeded category and level.
func FirstCategoryAndLevel(t *testing.T, db *gorm.DB) (uint, uint) {
	t.Helper()
	var c catalogModel.CompetitionCategoryModel
	var l catalogModel.CompetitionLevelModel
	require.NoError(t, db.Order("id").First(&c).Error)
	require.NoError(t, db.Order("id").First(&l).Error)
	return c.ID, l.ID
}

func CreateCompetition(t *testing.T, db *gorm.DB, title string, year int) catalogModel.CompetitionModel {
	t.Helper()
	catID, levelID := FirstCategoryAndLevel(t, db)
	c := catalogModel.CompetitionModel{Title: title, Year: year, CategoryID: catID, LevelID: levelID}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func CreateEvent(t *testing.T, db *gorm.DB, competitionID uuid.UUID, status eventModel.EventStatus) eventModel.CompetitionEventModel {
	t.Helper()
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	e := eventModel.CompetitionEventModel{
		CompetitionID: competitionID,
		Name:          "Round " + string(status),
		StartTime:     start,
		EndTime:       start.Add(30 * 24 * time.Hour),
		Status:        status,
	}
	require.NoError(t, db.Create(&e).Error)
	return e
}
