package database

import (
	"log"

	"github.com/NXINGNICK/whitegate/models"

	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.BlogPost{},
		&models.Comment{},
		&models.UserPost{},
		&models.Badge{},
		&models.SiteConfig{},
	)

	if err != nil {
		log.Printf("Error running migrations: %v", err)
		return err
	}

	log.Println("Migrations completed successfully")
	return nil
}
