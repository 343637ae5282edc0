package repository

import (
	"sql_range_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HintStateRepository struct {
	DB *gorm.DB
}

func NewHintStateRepository(db *gorm.DB) *HintStateRepository {
	return &HintStateRepository{DB: db}
}

// GetOrCreate 懒建：首次读取时落一行空状态。
// insert-or-ignore 保证同一用户并发首访不会插出两行。
func (r *HintStateRepository) GetOrCreate(userID uint) (*model.HintState, error) {
	state := &model.HintState{UserID: userID, HintsOpened: "[]"}
	err := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(state).Error
	if err != nil {
		return nil, err
	}
	err = r.DB.Where("user_id = ?", userID).First(state).Error
	return state, err
}

func (r *HintStateRepository) Save(state *model.HintState) error {
	return r.DB.Save(state).Error
}
