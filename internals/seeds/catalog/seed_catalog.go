package catalog

import (
	_ "embed"
	"log"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogModel "compaward_backend/internals/features/competitions/catalog/model"
)

//go:embed data_catalog.json
var defaultData []byte

type catalogSeed struct {
	Categories []string `json:"categories"`
	Levels     []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"levels"`
}

// SeedCatalog inserts the default categories and levels (idempotent).
func SeedCatalog(db *gorm.DB) error {
	var data catalogSeed
	if err := sonic.Unmarshal(defaultData, &data); err != nil {
		return err
	}

	cats := make([]catalogModel.CompetitionCategoryModel, 0, len(data.Categories))
	for _, n := range data.Categories {
		cats = append(cats, catalogModel.CompetitionCategoryModel{Name: n})
	}
	levels := make([]catalogModel.CompetitionLevelModel, 0, len(data.Levels))
	for _, l := range data.Levels {
		levels = append(levels, catalogModel.CompetitionLevelModel{Name: l.Name, Description: l.Description})
	}

	onName := clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}
	res := db.Clauses(onName).Create(&cats)
	if res.Error != nil {
		return res.Error
	}
	log.Printf("[SEED] categories: %d inserted", res.RowsAffected)

	res = db.Clauses(onName).Create(&levels)
	if res.Error != nil {
		return res.Error
	}
	log.Printf("[SEED] levels: %d inserted", res.RowsAffected)
	return nil
}
