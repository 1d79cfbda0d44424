package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"compaward_backend/internals/features/competitions/catalog/dto"
	"compaward_backend/internals/features/competitions/catalog/model"
	"compaward_backend/internals/helpers/apperror"
)

// ===================== CATEGORY =====================

func ListCategories(ctx context.Context, db *gorm.DB) ([]model.CompetitionCategoryModel, error) {
	var rows []model.CompetitionCategoryModel
	if err := db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, apperror.Internal(err, "list categories")
	}
	return rows, nil
}

func CreateCategory(ctx context.Context, db *gorm.DB, req dto.CategoryRequest) (*model.CompetitionCategoryModel, error) {
	if err := ensureNameFree(db.WithContext(ctx), &model.CompetitionCategoryModel{}, req.Name, 0); err != nil {
		return nil, err
	}
	m := model.CompetitionCategoryModel{Name: req.Name}
	if err := db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return &m, nil
}

func UpdateCategory(ctx context.Context, db *gorm.DB, id uint, req dto.CategoryRequest) (*model.CompetitionCategoryModel, error) {
	var m model.CompetitionCategoryModel
	if err := db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, apperror.FromDB(err, "category not found")
	}
	if err := ensureNameFree(db.WithContext(ctx), &model.CompetitionCategoryModel{}, req.Name, id); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&m).Update("name", req.Name).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	m.Name = req.Name
	return &m, nil
}

// DeleteCategory is refused while any competition uses the category.
func DeleteCategory(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.CompetitionCategoryModel
		if err := tx.First(&m, id).Error; err != nil {
			return apperror.FromDB(err, "category not found")
		}
		var n int64
		if err := tx.Model(&model.CompetitionModel{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
			return apperror.Internal(err, "count competitions")
		}
		if n > 0 {
			return apperror.Integrity(fmt.Sprintf("category is used by %d competition(s)", n), n)
		}
		return apperror.FromDB(tx.Delete(&m).Error, "")
	})
}

// ===================== LEVEL =====================

func ListLevels(ctx context.Context, db *gorm.DB) ([]model.CompetitionLevelModel, error) {
	var rows []model.CompetitionLevelModel
	if err := db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, apperror.Internal(err, "list levels")
	}
	return rows, nil
}

func CreateLevel(ctx context.Context, db *gorm.DB, req dto.LevelRequest) (*model.CompetitionLevelModel, error) {
	if err := ensureNameFree(db.WithContext(ctx), &model.CompetitionLevelModel{}, req.Name, 0); err != nil {
		return nil, err
	}
	m := model.CompetitionLevelModel{Name: req.Name, Description: req.Description}
	if err := db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return &m, nil
}

func UpdateLevel(ctx context.Context, db *gorm.DB, id uint, req dto.LevelRequest) (*model.CompetitionLevelModel, error) {
	var m model.CompetitionLevelModel
	if err := db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, apperror.FromDB(err, "level not found")
	}
	if err := ensureNameFree(db.WithContext(ctx), &model.CompetitionLevelModel{}, req.Name, id); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&m).Updates(map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
	}).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	m.Name, m.Description = req.Name, req.Description
	return &m, nil
}

func DeleteLevel(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.CompetitionLevelModel
		if err := tx.First(&m, id).Error; err != nil {
			return apperror.FromDB(err, "level not found")
		}
		var n int64
		if err := tx.Model(&model.CompetitionModel{}).Where("level_id = ?", id).Count(&n).Error; err != nil {
			return apperror.Internal(err, "count competitions")
		}
		if n > 0 {
			return apperror.Integrity(fmt.Sprintf("level is used by %d competition(s)", n), n)
		}
		return apperror.FromDB(tx.Delete(&m).Error, "")
	})
}

// ===================== shared =====================

func ensureNameFree(q *gorm.DB, m interface{}, name string, exceptID uint) error {
	var n int64
	q = q.Model(m).Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name))
	if exceptID > 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return apperror.Internal(err, "check name")
	}
	if n > 0 {
		return apperror.FieldError("name", "name already exists")
	}
	return nil
}

// MissingCatalogRefs lists the category and level ids that do not exist,
// formatted as "category:<id>" and "level:<id>".
func MissingCatalogRefs(tx *gorm.DB, categoryID, levelID uint) ([]string, error) {
	var missing []string
	var n int64
	if err := tx.Model(&model.CompetitionCategoryModel{}).Where("id = ?", categoryID).Count(&n).Error; err != nil {
		return nil, apperror.Internal(err, "check category")
	}
	if n == 0 {
		missing = append(missing, fmt.Sprintf("category:%d", categoryID))
	}
	if err := tx.Model(&model.CompetitionLevelModel{}).Where("id = ?", levelID).Count(&n).Error; err != nil {
		return nil, apperror.Internal(err, "check level")
	}
	if n == 0 {
		missing = append(missing, fmt.Sprintf("level:%d", levelID))
	}
	return missing, nil
}

// ValidateCategoryLevel checks both ids and reports every miss in one error.
func ValidateCategoryLevel(tx *gorm.DB, categoryID, levelID uint) error {
	missing, err := MissingCatalogRefs(tx, categoryID, levelID)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		log.Printf("[CATALOG] unknown references: %v", missing)
		return apperror.Reference("unknown catalog references", missing)
	}
	return nil
}
