package db

import (
	"log"

	"quitcoach/internal/config"
	"quitcoach/internal/plan"
	"quitcoach/internal/progress"
	"quitcoach/internal/user"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	// Auto-migrate account models
	if err := db.AutoMigrate(&user.User{}, &user.SmokerProfile{}); err != nil {
		return err
	}

	// Auto-migrate plan and progression models
	if err := db.AutoMigrate(&plan.PlanRequest{}, &plan.QuitPlan{}, &plan.Stage{}, &plan.Task{}, &plan.TaskCompletion{}); err != nil {
		return err
	}

	// Auto-migrate the daily ledger
	if err := db.AutoMigrate(&progress.Entry{}); err != nil {
		return err
	}

	DB = db
	log.Printf("Database connected and migrated")
	return nil
}
