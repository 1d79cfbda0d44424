package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	awardModel "compaward_backend/internals/features/awards/awards/model"
	"compaward_backend/internals/features/competitions/catalog/dto"
	"compaward_backend/internals/features/competitions/catalog/model"
	eventModel "compaward_backend/internals/features/competitions/events/model"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
)

const msgCompetitionNotFound = "competition not found"

var competitionSortable = map[string]string{
	"title":      "title",
	"year":       "year",
	"created_at": "created_at",
}

func ListCompetitions(ctx context.Context, db *gorm.DB, f dto.CompetitionFilter, p helper.Params) ([]model.CompetitionModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.CompetitionModel{})
	if s := strings.TrimSpace(f.Q); s != "" {
		q = q.Where("LOWER(title) LIKE LOWER(?)", "%"+s+"%")
	}
	if f.Year > 0 {
		q = q.Where("year = ?", f.Year)
	}
	if f.CategoryID > 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.LevelID > 0 {
		q = q.Where("level_id = ?", f.LevelID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal(err, "count competitions")
	}
	var rows []model.CompetitionModel
	if err := q.Preload("Category").Preload("Level").
		Order(p.OrderClause(competitionSortable, "year")).
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal(err, "list competitions")
	}
	return rows, total, nil
}

func GetCompetition(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.CompetitionModel, error) {
	var m model.CompetitionModel
	if err := db.WithContext(ctx).Preload("Category").Preload("Level").First(&m, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, msgCompetitionNotFound)
	}
	return &m, nil
}

func CreateCompetition(ctx context.Context, db *gorm.DB, creatorID uuid.UUID, req dto.CreateCompetitionRequest) (*model.CompetitionModel, error) {
	var m model.CompetitionModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ValidateCategoryLevel(tx, req.CategoryID, req.LevelID); err != nil {
			return err
		}
		m = model.CompetitionModel{
			Title:       req.Title,
			Year:        req.Year,
			Description: req.Description,
			URI:         req.URI,
			CategoryID:  req.CategoryID,
			LevelID:     req.LevelID,
			CreatorID:   &creatorID,
		}
		if err := tx.Create(&m).Error; err != nil {
			return apperror.FromDB(err, "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetCompetition(ctx, db, m.ID)
}

func UpdateCompetition(ctx context.Context, db *gorm.DB, id uuid.UUID, req dto.UpdateCompetitionRequest) (*model.CompetitionModel, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.CompetitionModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, msgCompetitionNotFound)
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = strings.TrimSpace(*req.Title)
		}
		if req.Year != nil {
			updates["year"] = *req.Year
		}
		if req.Description != nil {
			updates["description"] = strings.TrimSpace(*req.Description)
		}
		if req.URI != nil {
			updates["uri"] = strings.TrimSpace(*req.URI)
		}
		cat, lvl := m.CategoryID, m.LevelID
		if req.CategoryID != nil {
			cat = *req.CategoryID
			updates["category_id"] = cat
		}
		if req.LevelID != nil {
			lvl = *req.LevelID
			updates["level_id"] = lvl
		}
		if req.CategoryID != nil || req.LevelID != nil {
			if err := ValidateCategoryLevel(tx, cat, lvl); err != nil {
				return err
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return apperror.FromDB(tx.Model(&m).Updates(updates).Error, "")
	})
	if err != nil {
		return nil, err
	}
	return GetCompetition(ctx, db, id)
}

// DeleteCompetition is refused while awards or events reference the competition;
// the error carries the number of blocking rows.
func DeleteCompetition(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.CompetitionModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, msgCompetitionNotFound)
		}

		var awards int64
		if err := tx.Model(&awardModel.AwardModel{}).Where("competition_id = ?", id).Count(&awards).Error; err != nil {
			return apperror.Internal(err, "count awards")
		}
		if awards > 0 {
			return apperror.Integrity(fmt.Sprintf("competition is referenced by %d award(s)", awards), awards)
		}

		var events int64
		if err := tx.Model(&eventModel.CompetitionEventModel{}).Where("competition_id = ?", id).Count(&events).Error; err != nil {
			return apperror.Internal(err, "count events")
		}
		if events > 0 {
			return apperror.Integrity(fmt.Sprintf("competition has %d event(s)", events), events)
		}

		if err := tx.Delete(&m).Error; err != nil {
			return apperror.FromDB(err, "")
		}
		log.Printf("[CATALOG] competition %s deleted", id)
		return nil
	})
}

// CompetitionSeed describes a competition to look up or create during award
// materialization.
type CompetitionSeed struct {
	ID          *uuid.UUID
	Title       string
	Year        int
	CategoryID  uint
	LevelID     uint
	Description string
	URI         string
	CreatorID   *uuid.UUID
}

// ResolveCompetition returns the competition named by seed.ID, or the one with
// the same (title, year), creating it on first use. Category, level, creator,
// description and uri are only applied on creation.
func ResolveCompetition(tx *gorm.DB, seed CompetitionSeed) (*model.CompetitionModel, bool, error) {
	var m model.CompetitionModel
	if seed.ID != nil {
		if err := tx.First(&m, "id = ?", *seed.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, apperror.Reference("unknown competition", []string{"competition:" + seed.ID.String()})
			}
			return nil, false, apperror.Internal(err, "load competition")
		}
		return &m, false, nil
	}

	title := strings.TrimSpace(seed.Title)
	err := tx.Where("title = ? AND year = ?", title, seed.Year).First(&m).Error
	if err == nil {
		return &m, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, apperror.Internal(err, "load competition")
	}

	if err := ValidateCategoryLevel(tx, seed.CategoryID, seed.LevelID); err != nil {
		return nil, false, err
	}
	m = model.CompetitionModel{
		Title:       title,
		Year:        seed.Year,
		Description: seed.Description,
		URI:         seed.URI,
		CategoryID:  seed.CategoryID,
		LevelID:     seed.LevelID,
		CreatorID:   seed.CreatorID,
	}
	if err := tx.Create(&m).Error; err != nil {
		return nil, false, apperror.FromDB(err, "")
	}
	return &m, true, nil
}
