package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"compaward_backend/internals/features/users/users/model"
	"compaward_backend/internals/helpers/apperror"
)

// ResolveByInstitutionalIDs loads users in the order the ids were given.
// Every id that does not match a user is reported in one reference error.
func ResolveByInstitutionalIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]model.UserModel, error) {
	clean := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		clean = append(clean, id)
	}
	if len(clean) == 0 {
		return nil, nil
	}

	var rows []model.UserModel
	if err := tx.WithContext(ctx).
		Preload("Roles").
		Where("institutional_id IN ?", clean).
		Find(&rows).Error; err != nil {
		return nil, apperror.Internal(err, "resolve users")
	}

	byID := make(map[string]model.UserModel, len(rows))
	for _, u := range rows {
		byID[u.InstitutionalID] = u
	}
	out := make([]model.UserModel, 0, len(clean))
	var missing []string
	for _, id := range clean {
		u, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, u)
	}
	if len(missing) > 0 {
		return nil, apperror.Reference("unknown user ids", missing)
	}
	return out, nil
}

// Resolver is the database-backed user lookup handed to the award materializer.
type Resolver struct{}

func (Resolver) Resolve(ctx context.Context, tx *gorm.DB, institutionalIDs []string) ([]model.UserModel, error) {
	return ResolveByInstitutionalIDs(ctx, tx, institutionalIDs)
}
