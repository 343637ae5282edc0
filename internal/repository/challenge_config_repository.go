package repository

import (
	"sql_range_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ChallengeConfigRepository struct {
	DB *gorm.DB
}

func NewChallengeConfigRepository(db *gorm.DB) *ChallengeConfigRepository {
	return &ChallengeConfigRepository{DB: db}
}

// Get 读取单例配置行（id=1）
func (r *ChallengeConfigRepository) Get() (*model.ChallengeConfig, error) {
	var cfg model.ChallengeConfig
	err := r.DB.First(&cfg, 1).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *ChallengeConfigRepository) Update(flag string, points *int, updatedBy uint) error {
	updates := map[string]interface{}{
		"flag":       flag,
		"updated_at": time.Now(),
		"updated_by": updatedBy,
	}
	if points != nil {
		updates["points"] = *points
	}
	return r.DB.Model(&model.ChallengeConfig{}).Where("id = ?", 1).Updates(updates).Error
}
