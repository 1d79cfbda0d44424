package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"compaward_backend/internals/features/notifications/notifications/model"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
)

func List(ctx context.Context, db *gorm.DB, userID uuid.UUID, unreadOnly bool, p helper.Params) ([]model.NotificationModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.NotificationModel{}).Where("recipient_id = ?", userID)
	if unreadOnly {
		q = q.Where("unread = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal(err, "count notifications")
	}
	var rows []model.NotificationModel
	if err := q.Order("created_at DESC").Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal(err, "list notifications")
	}
	return rows, total, nil
}

func UnreadCount(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("recipient_id = ? AND unread = ?", userID, true).
		Count(&n).Error; err != nil {
		return 0, apperror.Internal(err, "count unread")
	}
	return n, nil
}

// MarkRead only touches the caller's own notification.
func MarkRead(ctx context.Context, db *gorm.DB, userID, id uuid.UUID) error {
	res := db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("id = ? AND recipient_id = ?", id, userID).
		Update("unread", false)
	if res.Error != nil {
		return apperror.Internal(res.Error, "mark read")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("notification not found")
	}
	return nil
}

func MarkAllRead(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("recipient_id = ? AND unread = ?", userID, true).
		Update("unread", false)
	if res.Error != nil {
		return 0, apperror.Internal(res.Error, "mark all read")
	}
	return res.RowsAffected, nil
}

func Delete(ctx context.Context, db *gorm.DB, userID, id uuid.UUID) error {
	res := db.WithContext(ctx).Where("id = ? AND recipient_id = ?", id, userID).Delete(&model.NotificationModel{})
	if res.Error != nil {
		return apperror.Internal(res.Error, "delete notification")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("notification not found")
	}
	return nil
}
