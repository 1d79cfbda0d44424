package seeds

import (
	"log"

	"gorm.io/gorm"

	"compaward_backend/internals/seeds/catalog"
	"compaward_backend/internals/seeds/roles"
)

func RunAllSeeds(db *gorm.DB) {
	//* Roles
	if err := roles.SeedRoles(db); err != nil {
		log.Printf("[SEED] roles failed: %v", err)
	}

	//* Catalog
	if err := catalog.SeedCatalog(db); err != nil {
		log.Printf("[SEED] catalog failed: %v", err)
	}
}
