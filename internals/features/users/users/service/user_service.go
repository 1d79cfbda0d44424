package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/features/users/users/dto"
	"compaward_backend/internals/features/users/users/model"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/authz"
)

const msgUserNotFound = "user not found"

// ========================== QUERY ==========================

func GetByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.UserModel, error) {
	var u model.UserModel
	if err := db.WithContext(ctx).
		Preload("Roles").
		Preload("Profile").
		First(&u, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, msgUserNotFound)
	}
	return &u, nil
}

// LoadActive is used by the auth middleware: roles come from the database,
// never from the token.
func LoadActive(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.UserModel, error) {
	var u model.UserModel
	if err := db.WithContext(ctx).Preload("Roles").First(&u, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, msgUserNotFound)
	}
	if !u.IsActive {
		return nil, apperror.Permission("account is disabled")
	}
	return &u, nil
}

var userSortable = map[string]string{
	"user_id":    "users.institutional_id",
	"username":   "users.username",
	"created_at": "users.created_at",
	"real_name":  "p.real_name",
}

func List(ctx context.Context, db *gorm.DB, f dto.UserFilter, p helper.Params) ([]model.UserModel, int64, error) {
	q := db.WithContext(ctx).
		Model(&model.UserModel{}).
		Joins("LEFT JOIN user_profiles p ON p.user_id = users.id")

	if s := strings.TrimSpace(f.Role); s != "" {
		q = q.Where(`users.id IN (
			SELECT ur.user_id FROM user_roles ur
			JOIN roles r ON r.id = ur.role_id
			WHERE r.name = ?)`, s)
	}
	if s := strings.TrimSpace(f.Department); s != "" {
		q = q.Where("p.department = ?", s)
	}
	if s := strings.TrimSpace(f.Major); s != "" {
		q = q.Where("p.major = ?", s)
	}
	if s := strings.TrimSpace(f.Clazz); s != "" {
		q = q.Where("p.clazz = ?", s)
	}
	if s := strings.TrimSpace(f.RealName); s != "" {
		q = q.Where("LOWER(p.real_name) LIKE LOWER(?)", "%"+s+"%")
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(users.username) LIKE LOWER(?) OR LOWER(users.institutional_id) LIKE LOWER(?) OR LOWER(p.real_name) LIKE LOWER(?)", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal(err, "count users")
	}

	var rows []model.UserModel
	if err := q.Select("users.*").
		Preload("Roles").
		Preload("Profile").
		Order(p.OrderClause(userSortable, "user_id")).
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal(err, "list users")
	}
	return rows, total, nil
}

// ========================== WRITE ==========================

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func loadRoles(tx *gorm.DB, names []string) ([]model.RoleModel, error) {
	names = dedupe(names)
	if len(names) == 0 {
		names = []string{constants.RoleStudent}
	}
	var rs []model.RoleModel
	if err := tx.Where("name IN ?", names).Find(&rs).Error; err != nil {
		return nil, apperror.Internal(err, "load roles")
	}
	if len(rs) != len(names) {
		found := make(map[string]bool, len(rs))
		for _, r := range rs {
			found[r.Name] = true
		}
		var missing []string
		for _, n := range names {
			if !found[n] {
				missing = append(missing, n)
			}
		}
		return nil, apperror.Reference("unknown roles", missing)
	}
	return rs, nil
}

// Register creates a user and profile. Without explicit roles the user is a Student.
func Register(ctx context.Context, db *gorm.DB, req dto.RegisterUserRequest) (*model.UserModel, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal(err, "hash password")
	}

	var created model.UserModel
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.UserModel{}).
			Where("institutional_id = ? OR username = ?", req.UserID, req.Username).
			Count(&n).Error; err != nil {
			return apperror.Internal(err, "check user uniqueness")
		}
		if n > 0 {
			return apperror.Validation("user already exists", map[string][]string{
				"user_id": {"user_id or username is already taken"},
			})
		}

		roles, err := loadRoles(tx, req.Roles)
		if err != nil {
			return err
		}

		profile := &model.UserProfileModel{}
		req.Profile.Apply(profile)
		if profile.Email == "" {
			profile.Email = req.Email
		}

		created = model.UserModel{
			InstitutionalID: req.UserID,
			Username:        req.Username,
			PasswordHash:    hash,
			Email:           req.Email,
			IsActive:        true,
			Roles:           roles,
			Profile:         profile,
		}
		if err := tx.Create(&created).Error; err != nil {
			return apperror.FromDB(err, "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[USER] registered %s (%s)", created.InstitutionalID, created.ID)
	return &created, nil
}

// Update changes roles, active flag and profile. Administrators cannot demote
// or deactivate themselves.
func Update(ctx context.Context, db *gorm.DB, actor authz.Actor, id uuid.UUID, req dto.UpdateUserRequest) (*model.UserModel, error) {
	self := actor.UserID == id
	if self && req.IsActive != nil && !*req.IsActive {
		return nil, apperror.Permission("you cannot deactivate your own account")
	}
	if self && req.Roles != nil && actor.HasRole(constants.RoleAdministrator) && !contains(req.Roles, constants.RoleAdministrator) {
		return nil, apperror.Permission("you cannot remove your own administrator role")
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.UserModel
		if err := tx.Preload("Profile").First(&u, "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, msgUserNotFound)
		}

		updates := map[string]interface{}{}
		if req.Email != nil {
			updates["email"] = *req.Email
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		if len(updates) > 0 {
			if err := tx.Model(&u).Updates(updates).Error; err != nil {
				return apperror.FromDB(err, "")
			}
		}

		if req.Roles != nil {
			roles, err := loadRoles(tx, req.Roles)
			if err != nil {
				return err
			}
			if err := tx.Model(&u).Association("Roles").Replace(roles); err != nil {
				return apperror.Internal(err, "replace roles")
			}
		}

		if req.Profile != nil {
			p := u.Profile
			if p == nil {
				p = &model.UserProfileModel{UserID: u.ID}
			}
			req.Profile.Apply(p)
			if err := tx.Save(p).Error; err != nil {
				return apperror.FromDB(err, "")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetByID(ctx, db, id)
}

// Delete removes a user, their role links and profile. Self-deletion is refused.
func Delete(ctx context.Context, db *gorm.DB, actor authz.Actor, id uuid.UUID) error {
	if actor.UserID == id {
		return apperror.Permission("you cannot delete your own account")
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.UserModel
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, msgUserNotFound)
		}
		if err := tx.Model(&u).Association("Roles").Clear(); err != nil {
			return apperror.Internal(err, "clear roles")
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.UserProfileModel{}).Error; err != nil {
			return apperror.FromDB(err, "")
		}
		if err := tx.Delete(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return apperror.Integrity("user is still referenced by teams, awards or applications", 0)
			}
			return apperror.FromDB(err, "")
		}
		log.Printf("[USER] deleted %s by %s", id, actor.UserID)
		return nil
	})
}

func ChangePassword(ctx context.Context, db *gorm.DB, userID uuid.UUID, req dto.ChangePasswordRequest) error {
	var u model.UserModel
	if err := db.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		return apperror.FromDB(err, msgUserNotFound)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)) != nil {
		return apperror.FieldError("old_password", "current password is incorrect")
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return apperror.Internal(err, "hash password")
	}
	if err := db.WithContext(ctx).Model(&u).Update("password_hash", hash).Error; err != nil {
		return apperror.Internal(err, "update password")
	}
	return nil
}

// ========================== ROLES ==========================

func ListRoles(ctx context.Context, db *gorm.DB) ([]model.RoleModel, error) {
	var rs []model.RoleModel
	if err := db.WithContext(ctx).Order("id").Find(&rs).Error; err != nil {
		return nil, apperror.Internal(err, "list roles")
	}
	return rs, nil
}

func RoleStatistics(ctx context.Context, db *gorm.DB) (*dto.RoleStatistics, error) {
	out := &dto.RoleStatistics{Roles: []dto.RoleCount{}}
	q := db.WithContext(ctx)

	if err := q.Table("roles r").
		Select("r.name AS name, COUNT(ur.user_id) AS count").
		Joins("LEFT JOIN user_roles ur ON ur.role_id = r.id").
		Group("r.id, r.name").
		Order("r.id").
		Scan(&out.Roles).Error; err != nil {
		return nil, apperror.Internal(err, "role counts")
	}
	if err := q.Model(&model.UserModel{}).Count(&out.Total).Error; err != nil {
		return nil, apperror.Internal(err, "user total")
	}
	if err := q.Model(&model.UserModel{}).
		Where("NOT EXISTS (SELECT 1 FROM user_roles ur WHERE ur.user_id = users.id)").
		Count(&out.Unassigned).Error; err != nil {
		return nil, apperror.Internal(err, "unassigned users")
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
