package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"compaward_backend/internals/features/users/users/dto"
	"compaward_backend/internals/features/users/users/model"
	"compaward_backend/internals/helpers/apperror"
)

// GetOrCreateProfile returns the caller's profile, creating an empty one on first access.
func GetOrCreateProfile(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.UserProfileModel, error) {
	var p model.UserProfileModel
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal(err, "load profile")
	}
	p = model.UserProfileModel{UserID: userID}
	if err := db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return &p, nil
}

func UpdateProfile(ctx context.Context, db *gorm.DB, userID uuid.UUID, req dto.ProfileRequest) (*model.UserProfileModel, error) {
	p, err := GetOrCreateProfile(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	req.Apply(p)
	if err := db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return p, nil
}

// SearchProfiles finds users whose real name contains q.
func SearchProfiles(ctx context.Context, db *gorm.DB, q string, limit int) ([]model.UserModel, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.FieldError("q", "search text is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var rows []model.UserModel
	if err := db.WithContext(ctx).
		Joins("JOIN user_profiles p ON p.user_id = users.id").
		Where("LOWER(p.real_name) LIKE LOWER(?)", "%"+q+"%").
		Preload("Profile").
		Preload("Roles").
		Order("users.institutional_id").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, apperror.Internal(err, "search profiles")
	}
	return rows, nil
}
