package roles

import (
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"compaward_backend/internals/constants"
	userModel "compaward_backend/internals/features/users/users/model"
)

// SeedRoles inserts the four fixed roles; existing names are left alone.
func SeedRoles(db *gorm.DB) error {
	rows := make([]userModel.RoleModel, 0, len(constants.AllRoles))
	for _, name := range constants.AllRoles {
		rows = append(rows, userModel.RoleModel{Name: name})
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows)
	if res.Error != nil {
		return res.Error
	}
	log.Printf("[SEED] roles: %d inserted", res.RowsAffected)
	return nil
}
