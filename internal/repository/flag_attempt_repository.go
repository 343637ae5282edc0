package repository

import (
	"sql_range_backend/internal/model"

	"gorm.io/gorm"
)

type FlagAttemptRepository struct {
	DB *gorm.DB
}

func NewFlagAttemptRepository(db *gorm.DB) *FlagAttemptRepository {
	return &FlagAttemptRepository{DB: db}
}

func (r *FlagAttemptRepository) Create(attempt *model.FlagAttempt) error {
	return r.DB.Create(attempt).Error
}

// CountDummy 某用户历史上提交过多少次诱饵旗（不含本次），决定递进话术档位
func (r *FlagAttemptRepository) CountDummy(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.FlagAttempt{}).
		Where("user_id = ? AND is_dummy = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *FlagAttemptRepository) ListByUserID(userID uint) ([]*model.FlagAttempt, error) {
	var attempts []*model.FlagAttempt
	err := r.DB.Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&attempts).Error
	return attempts, err
}
