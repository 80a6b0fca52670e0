package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"dealradar/internal/models"
)

// MigrateAndSeed ensures required tables exist and inserts baseline rows for singleton tables.
func MigrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedDefaults(db); err != nil {
		return fmt.Errorf("seed defaults failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.ScrapeJob{},
		&models.Product{},
		&models.Setting{},
	}
}

func seedDefaults(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return ensureDefaultSetting(tx)
	})
}

func ensureDefaultSetting(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&models.Setting{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	row := models.Setting{
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		RequestTimeoutMs:  30000,
		WaitTimeMs:        2000,
		UseProxy:          false,
		ProxyList:         "[]",
		MaxConcurrentJobs: 3,
		DataRetentionDays: 90,
	}
	return tx.Create(&row).Error
}
