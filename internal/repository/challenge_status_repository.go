package repository

import (
	"sql_range_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChallengeStatusRepository struct {
	DB *gorm.DB
}

func NewChallengeStatusRepository(db *gorm.DB) *ChallengeStatusRepository {
	return &ChallengeStatusRepository{DB: db}
}

func (r *ChallengeStatusRepository) GetByUserID(userID uint) (*model.ChallengeStatus, error) {
	var status model.ChallengeStatus
	err := r.DB.Where("user_id = ?", userID).First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// Upsert 按 user_id 插入或覆盖（user_id 是主键，冲突时整行更新）
func (r *ChallengeStatusRepository) Upsert(status *model.ChallengeStatus) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(status).Error
}

// IncrementAttempts 原子自增尝试计数并刷新最后提交时间
func (r *ChallengeStatusRepository) IncrementAttempts(userID uint, now int64) error {
	return r.DB.Model(&model.ChallengeStatus{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"attempts":          gorm.Expr("attempts + 1"),
			"last_attempt_time": now,
		}).Error
}

func (r *ChallengeStatusRepository) MarkCompleted(userID uint, completionTime int64, score int) error {
	return r.DB.Model(&model.ChallengeStatus{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"completed":       true,
			"completion_time": completionTime,
			"score":           score,
		}).Error
}

// ChallengeStats 管理后台的闯关汇总
type ChallengeStats struct {
	TotalStarted      int64   `json:"started"`
	TotalCompleted    int64   `json:"completed"`
	AvgCompletionSecs float64 `json:"avgCompletionSecs"`
	MinCompletionSecs float64 `json:"minCompletionSecs"`
	MaxCompletionSecs float64 `json:"maxCompletionSecs"`
}

func (r *ChallengeStatusRepository) Stats() (*ChallengeStats, error) {
	var stats ChallengeStats
	err := r.DB.Raw(`
		SELECT
			COUNT(*) AS total_started,
			COALESCE(SUM(CASE WHEN completed = 1 THEN 1 ELSE 0 END), 0) AS total_completed,
			COALESCE(AVG(CASE WHEN completed = 1 THEN (completion_time - start_time) / 1000.0 END), 0) AS avg_completion_secs,
			COALESCE(MIN(CASE WHEN completed = 1 THEN (completion_time - start_time) / 1000.0 END), 0) AS min_completion_secs,
			COALESCE(MAX(CASE WHEN completed = 1 THEN (completion_time - start_time) / 1000.0 END), 0) AS max_completion_secs
		FROM challenge_status
	`).Scan(&stats).Error
	return &stats, err
}
