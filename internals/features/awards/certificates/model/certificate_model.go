package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	CertNo   string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_certificates_cert_no;column:cert_no" json:"cert_no"`
	ImageKey string    `gorm:"type:varchar(500);not null;column:image_key" json:"-"`
	ImageURL string    `gorm:"type:varchar(1000);column:image_url" json:"image_url"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
}

func (CertificateModel) TableName() string { return "certificates" }

func (c *CertificateModel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CertNo = strings.TrimSpace(c.CertNo)
	return nil
}
