package repository

import (
	"gorm.io/gorm"

	"dealradar/internal/models"
)

// SettingRepository handles the single-row settings table.
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns the settings row. Bootstrap seeds it, so a missing row is an
// error, not a silent default.
func (r *SettingRepository) Get() (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// Update applies a partial column update to the settings row.
func (r *SettingRepository) Update(updates map[string]interface{}) error {
	return r.db.Model(&models.Setting{}).Where("1=1").Updates(updates).Error
}
