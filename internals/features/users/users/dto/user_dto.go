package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"compaward_backend/internals/features/users/users/model"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

// RegisterUserRequest is used by administrators to create an account.
type RegisterUserRequest struct {
	UserID   string   `json:"user_id" validate:"required,notblank,max=32"`
	Username string   `json:"username" validate:"required,min=3,max=50"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Email    string   `json:"email" validate:"omitempty,email,max=255"`
	Roles    []string `json:"roles" validate:"omitempty,dive,oneof=Student Teacher CompetitionAdministrator Administrator"`

	Profile ProfileRequest `json:"profile"`
}

func (r *RegisterUserRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Profile.Normalize()
}

// UpdateUserRequest is a partial update; nil fields are left alone.
type UpdateUserRequest struct {
	Email    *string  `json:"email,omitempty" validate:"omitempty,email,max=255"`
	IsActive *bool    `json:"is_active,omitempty"`
	Roles    []string `json:"roles,omitempty" validate:"omitempty,dive,oneof=Student Teacher CompetitionAdministrator Administrator"`

	Profile *ProfileRequest `json:"profile,omitempty"`
}

func (r *UpdateUserRequest) Normalize() {
	if r.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &v
	}
	if r.Profile != nil {
		r.Profile.Normalize()
	}
}

type ProfileRequest struct {
	RealName   string `json:"real_name" validate:"max=100"`
	Phone      string `json:"phone" validate:"max=30"`
	Email      string `json:"email" validate:"omitempty,email,max=255"`
	Department string `json:"department" validate:"max=100"`
	Major      string `json:"major" validate:"max=100"`
	Clazz      string `json:"clazz" validate:"max=50"`
	Title      string `json:"title" validate:"max=50"`
}

func (r *ProfileRequest) Normalize() {
	r.RealName = strings.TrimSpace(r.RealName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Department = strings.TrimSpace(r.Department)
	r.Major = strings.TrimSpace(r.Major)
	r.Clazz = strings.TrimSpace(r.Clazz)
	r.Title = strings.TrimSpace(r.Title)
}

func (r ProfileRequest) Apply(p *model.UserProfileModel) {
	p.RealName = r.RealName
	p.Phone = r.Phone
	p.Email = r.Email
	p.Department = r.Department
	p.Major = r.Major
	p.Clazz = r.Clazz
	p.Title = r.Title
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72,nefield=OldPassword"`
}

// UserFilter backs GET /api/admin/users.
type UserFilter struct {
	Role       string `query:"role"`
	Department string `query:"department"`
	Major      string `query:"major"`
	Clazz      string `query:"clazz"`
	RealName   string `query:"real_name"`
	Q          string `query:"q"`
}

/* =======================================================
   RESPONSE DTOs
   ======================================================= */

type UserResponse struct {
	ID        uuid.UUID        `json:"id"`
	UserID    string           `json:"user_id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	IsActive  bool             `json:"is_active"`
	Roles     []string         `json:"roles"`
	Profile   *ProfileResponse `json:"profile,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type ProfileResponse struct {
	RealName   string `json:"real_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Major      string `json:"major"`
	Clazz      string `json:"clazz"`
	Title      string `json:"title"`
}

func FromProfile(p *model.UserProfileModel) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{
		RealName:   p.RealName,
		Phone:      p.Phone,
		Email:      p.Email,
		Department: p.Department,
		Major:      p.Major,
		Clazz:      p.Clazz,
		Title:      p.Title,
	}
}

func FromModel(u *model.UserModel) UserResponse {
	return UserResponse{
		ID:        u.ID,
		UserID:    u.InstitutionalID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		Roles:     u.RoleNames(),
		Profile:   FromProfile(u.Profile),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func FromModels(us []model.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(us))
	for i := range us {
		out = append(out, FromModel(&us[i]))
	}
	return out
}

// UserBrief is embedded in team/award payloads.
type UserBrief struct {
	ID       uuid.UUID `json:"id"`
	UserID   string    `json:"user_id"`
	RealName string    `json:"real_name"`
}

func Brief(u *model.UserModel) UserBrief {
	return UserBrief{ID: u.ID, UserID: u.InstitutionalID, RealName: u.DisplayName()}
}

func Briefs(us []model.UserModel) []UserBrief {
	out := make([]UserBrief, 0, len(us))
	for i := range us {
		out = append(out, Brief(&us[i]))
	}
	return out
}

type RoleCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type RoleStatistics struct {
	Roles      []RoleCount `json:"roles"`
	Unassigned int64       `json:"unassigned"`
	Total      int64       `json:"total"`
}
