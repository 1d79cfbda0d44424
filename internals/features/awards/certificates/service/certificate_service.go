package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	awardModel "compaward_backend/internals/features/awards/awards/model"
	"compaward_backend/internals/features/awards/certificates/model"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/storage"
)

const msgCertificateNotFound = "certificate not found"

func List(ctx context.Context, db *gorm.DB, q string, p helper.Params) ([]model.CertificateModel, int64, error) {
	tx := db.WithContext(ctx).Model(&model.CertificateModel{})
	if s := strings.TrimSpace(q); s != "" {
		tx = tx.Where("LOWER(cert_no) LIKE LOWER(?)", "%"+s+"%")
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal(err, "count certificates")
	}
	var rows []model.CertificateModel
	if err := tx.Order("created_at DESC").Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal(err, "list certificates")
	}
	return rows, total, nil
}

func Get(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.CertificateModel, error) {
	var m model.CertificateModel
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, msgCertificateNotFound)
	}
	return &m, nil
}

// Delete is refused while an award references the certificate. The stored
// image is removed after the row is gone.
func Delete(ctx context.Context, db *gorm.DB, store storage.BlobStore, id uuid.UUID) error {
	var key string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.CertificateModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, msgCertificateNotFound)
		}
		var n int64
		if err := tx.Model(&awardModel.AwardModel{}).Where("certificate_id = ?", id).Count(&n).Error; err != nil {
			return apperror.Internal(err, "count awards")
		}
		if n > 0 {
			return apperror.Integrity(fmt.Sprintf("certificate is attached to %d award(s)", n), n)
		}
		if err := tx.Delete(&m).Error; err != nil {
			return apperror.FromDB(err, "")
		}
		key = m.ImageKey
		return nil
	})
	if err != nil {
		return err
	}
	if store != nil && key != "" {
		storage.DeleteQuietly(context.WithoutCancel(ctx), store, key)
	}
	log.Printf("[CERTIFICATE] deleted %s", id)
	return nil
}
