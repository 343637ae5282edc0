package repository

import (
	"sql_range_backend/internal/model"

	"gorm.io/gorm"
)

type AdminSettingRepository struct {
	DB *gorm.DB
}

func NewAdminSettingRepository(db *gorm.DB) *AdminSettingRepository {
	return &AdminSettingRepository{DB: db}
}

func (r *AdminSettingRepository) GetAll() ([]*model.AdminSetting, error) {
	var settings []*model.AdminSetting
	err := r.DB.Find(&settings).Error
	return settings, err
}

func (r *AdminSettingRepository) Get(key string) (*model.AdminSetting, error) {
	var setting model.AdminSetting
	err := r.DB.Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *AdminSettingRepository) UpdateValue(key, value string) error {
	return r.DB.Model(&model.AdminSetting{}).Where("key = ?", key).Update("value", value).Error
}
