package service

import (
	"sql_range_backend/internal/repository"
	"time"
)

// ScoreboardEntry 对外展示行。未完成者 rank 留空，timeTaken 给实时耗时。
type ScoreboardEntry struct {
	Rank        *int    `json:"rank"`
	Username    string  `json:"username"`
	Points      int     `json:"points"`
	SolvedAt    *string `json:"solvedAt"`
	TimeTaken   *int64  `json:"timeTaken"` // 秒
	Status      string  `json:"status"`
	Attempts    int     `json:"attempts"`
	LastAttempt *int64  `json:"lastAttempt"`
}

type ScoreboardService struct {
	ScoreRepo *repository.ScoreRepository

	now func() time.Time
}

func NewScoreboardService(scoreRepo *repository.ScoreRepository) *ScoreboardService {
	return &ScoreboardService{ScoreRepo: scoreRepo, now: time.Now}
}

// GetScoreboard 名次只发给已完成的人；进行中的按当前用时展示但不占名次
func (s *ScoreboardService) GetScoreboard() ([]ScoreboardEntry, error) {
	rows, err := s.ScoreRepo.ListScoreboard()
	if err != nil {
		return nil, err
	}

	nowMs := s.now().UnixMilli()
	entries := make([]ScoreboardEntry, 0, len(rows))

	for i, row := range rows {
		entry := ScoreboardEntry{
			Username:    row.Username,
			Points:      row.Points,
			SolvedAt:    row.SolvedAt,
			Status:      "not_started",
			Attempts:    row.Attempts,
			LastAttempt: row.LastAttemptTime,
		}

		if row.Completed {
			entry.Status = "completed"
			rank := i + 1
			entry.Rank = &rank
			if row.CompletionTime != nil && row.StartTime != nil {
				taken := (*row.CompletionTime - *row.StartTime) / 1000
				entry.TimeTaken = &taken
			}
		} else if row.Started {
			entry.Status = "attempting"
			if row.StartTime != nil {
				elapsed := (nowMs - *row.StartTime) / 1000
				entry.TimeTaken = &elapsed
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
