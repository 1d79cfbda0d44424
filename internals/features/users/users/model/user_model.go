package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ========================= ROLE =========================

type RoleModel struct {
	ID   uint   `gorm:"primaryKey;column:id" json:"id"`
	Name string `gorm:"type:varchar(50);not null;uniqueIndex:uq_roles_name;column:name" json:"name"`
}

func (RoleModel) TableName() string { return "roles" }

// ========================= USER =========================

type UserModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`

	// Institutional id (student / staff number)
	InstitutionalID string `gorm:"type:varchar(32);not null;uniqueIndex:uq_users_institutional_id;column:institutional_id" json:"user_id"`
	Username        string `gorm:"type:varchar(50);not null;uniqueIndex:uq_users_username;column:username" json:"username"`
	PasswordHash    string `gorm:"type:varchar(255);not null;column:password_hash" json:"-"`
	Email           string `gorm:"type:varchar(255);column:email" json:"email"`
	IsActive        bool   `gorm:"not null;column:is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime;column:updated_at" json:"updated_at"`

	Roles   []RoleModel       `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID" json:"roles,omitempty"`
	Profile *UserProfileModel `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.InstitutionalID = strings.TrimSpace(u.InstitutionalID)
	u.Username = strings.TrimSpace(u.Username)
	return nil
}

func (u *UserModel) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

func (u *UserModel) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// DisplayName prefers the profile's real name.
func (u *UserModel) DisplayName() string {
	if u.Profile != nil && strings.TrimSpace(u.Profile.RealName) != "" {
		return u.Profile.RealName
	}
	return u.Username
}

// ========================= PROFILE =========================

type UserProfileModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_user_profiles_user;column:user_id" json:"user_id"`

	RealName   string `gorm:"type:varchar(100);index:idx_user_profiles_real_name;column:real_name" json:"real_name"`
	Phone      string `gorm:"type:varchar(30);column:phone" json:"phone"`
	Email      string `gorm:"type:varchar(255);column:email" json:"email"`
	Department string `gorm:"type:varchar(100);index:idx_user_profiles_department;column:department" json:"department"`
	Major      string `gorm:"type:varchar(100);column:major" json:"major"`
	Clazz      string `gorm:"type:varchar(50);column:clazz" json:"clazz"`
	Title      string `gorm:"type:varchar(50);column:title" json:"title"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (UserProfileModel) TableName() string { return "user_profiles" }

func (p *UserProfileModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
