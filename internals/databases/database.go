package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"compaward_backend/internals/configs"
	applicationModel "compaward_backend/internals/features/awards/applications/model"
	awardModel "compaward_backend/internals/features/awards/awards/model"
	certModel "compaward_backend/internals/features/awards/certificates/model"
	catalogModel "compaward_backend/internals/features/competitions/catalog/model"
	eventModel "compaward_backend/internals/features/competitions/events/model"
	teamModel "compaward_backend/internals/features/competitions/teams/model"
	notificationModel "compaward_backend/internals/features/notifications/notifications/model"
	userModel "compaward_backend/internals/features/users/users/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("[INFO] connecting to PostgreSQL...")

	// statement_timeout keeps a stuck query below the 5s request deadline.
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=compaward&options=-c statement_timeout=4000",
		configs.GetEnv("DB_USER"),
		configs.GetEnv("DB_PASSWORD"),
		configs.GetEnv("DB_HOST", "localhost"),
		configs.GetEnv("DB_PORT", "5432"),
		configs.GetEnv("DB_NAME", "compaward"),
		configs.GetEnv("DB_SSLMODE", "disable"),
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("[ERROR] database connect failed: %v", err)
	}
	DB = db
	log.Println("[INFO] DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("[WARN] pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetEnvInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(configs.GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			log.Printf("[WARN] warm-up ping err: %v", err)
			return
		}
		var n int64
		if err := DB.Model(&eventModel.CompetitionEventModel{}).
			Where("status <> ?", eventModel.EventArchived).
			Count(&n).Error; err != nil {
			log.Printf("[WARN] warm-up query err: %v", err)
		}
	}()
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&userModel.RoleModel{},
		&userModel.UserModel{},
		&userModel.UserProfileModel{},
		&catalogModel.CompetitionCategoryModel{},
		&catalogModel.CompetitionLevelModel{},
		&catalogModel.CompetitionModel{},
		&eventModel.CompetitionEventModel{},
		&certModel.CertificateModel{},
		&awardModel.AwardModel{},
		&teamModel.TeamModel{},
		&applicationModel.AwardApplicationModel{},
		&notificationModel.NotificationModel{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
