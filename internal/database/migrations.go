package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/clubarena/matchup/internal/models"
)

// AutoMigrate applies the schema for all persistent models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Sport{},
		&models.Team{},
		&models.TeamMember{},
		&models.Challenge{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

var defaultSports = []string{
	"football",
	"basketball",
	"volleyball",
	"cricket",
	"tennis",
	"padel",
}

// SeedSports inserts the baseline sport catalogue, skipping names that
// already exist.
func SeedSports(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	for _, name := range defaultSports {
		var count int64
		if err := db.Model(&models.Sport{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&models.Sport{Name: name}).Error; err != nil {
			return err
		}
	}

	return nil
}
