package repository

import (
	"sql_range_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

// InsertIgnore 首写生效：user_id 主键冲突时直接忽略，
// 并发重复提交也不会出现第二行或覆盖原始成绩。
func (r *ScoreRepository) InsertIgnore(score *model.Score) error {
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(score).Error
}

// ScoreboardRow 记分板行：已完成者按成绩排名，进行中的也展示
type ScoreboardRow struct {
	UserID          uint   `json:"-"`
	Username        string `json:"username"`
	Started         bool   `json:"-"`
	StartTime       *int64 `json:"-"`
	Completed       bool   `json:"-"`
	CompletionTime  *int64 `json:"-"`
	Points          int    `json:"points"`
	SolvedAt        *string `json:"solvedAt"`
	Attempts        int    `json:"attempts"`
	LastAttemptTime *int64 `json:"lastAttempt"`
}

// ListScoreboard 排序规则：完成优先，其后按分数降序、用时升序、尝试次数升序、开始时间升序
func (r *ScoreRepository) ListScoreboard() ([]ScoreboardRow, error) {
	var rows []ScoreboardRow
	err := r.DB.Raw(`
		SELECT
			u.id AS user_id,
			u.username,
			COALESCE(cs.started, 0) AS started,
			cs.start_time,
			COALESCE(cs.completed, 0) AS completed,
			cs.completion_time,
			COALESCE(s.points, 0) AS points,
			s.solved_at,
			COALESCE(cs.attempts, 0) AS attempts,
			cs.last_attempt_time
		FROM users u
		LEFT JOIN challenge_status cs ON u.id = cs.user_id
		LEFT JOIN scores s ON u.id = s.user_id
		WHERE cs.started = 1 OR s.user_id IS NOT NULL
		ORDER BY
			COALESCE(cs.completed, 0) DESC,
			COALESCE(s.points, 0) DESC,
			(CASE
				WHEN cs.completion_time IS NOT NULL AND cs.start_time IS NOT NULL
				THEN cs.completion_time - cs.start_time
				ELSE 999999999
			END) ASC,
			COALESCE(cs.attempts, 0) ASC,
			cs.start_time ASC
	`).Scan(&rows).Error
	return rows, err
}
