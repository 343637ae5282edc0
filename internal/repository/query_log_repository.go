package repository

import (
	"sql_range_backend/internal/model"

	"gorm.io/gorm"
)

type QueryLogRepository struct {
	DB *gorm.DB
}

func NewQueryLogRepository(db *gorm.DB) *QueryLogRepository {
	return &QueryLogRepository{DB: db}
}

func (r *QueryLogRepository) Create(entry *model.QueryLogEntry) error {
	return r.DB.Create(entry).Error
}

func (r *QueryLogRepository) ListByUserID(userID uint, limit int) ([]*model.QueryLogEntry, error) {
	var entries []*model.QueryLogEntry
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// QueryLogRow 管理后台的查询流水行，带用户名
type QueryLogRow struct {
	ID            uint   `json:"id"`
	UserID        uint   `json:"userId"`
	Username      string `json:"username"`
	Query         string `json:"query"`
	ExecutionTime int64  `json:"executionTime"`
	RowCount      int    `json:"rowCount"`
	FlagFound     bool   `json:"flagFound"`
	CreatedAt     string `json:"createdAt"`
}

// ListAll 分页列出全部查询流水，flagFound 为 nil 时不过滤
func (r *QueryLogRepository) ListAll(page, limit int, flagFound *bool) ([]QueryLogRow, int64, error) {
	query := r.DB.Model(&model.QueryLogEntry{}).
		Select("query_logs.id, query_logs.user_id, users.username, query_logs.query, query_logs.execution_time, query_logs.row_count, query_logs.flag_found, query_logs.created_at").
		Joins("JOIN users ON users.id = query_logs.user_id")

	if flagFound != nil {
		query = query.Where("query_logs.flag_found = ?", *flagFound)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []QueryLogRow
	err := query.Order("query_logs.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

// QueryStats 查询流水汇总
type QueryStats struct {
	TotalQueries    int64   `json:"totalQueries"`
	FlagFoundCount  int64   `json:"flagFoundQueries"`
	UniqueUsers     int64   `json:"uniqueUsers"`
	AvgExecutionMs  float64 `json:"averageExecutionTime"`
}

func (r *QueryLogRepository) Stats() (*QueryStats, error) {
	var stats QueryStats
	err := r.DB.Raw(`
		SELECT
			COUNT(*) AS total_queries,
			COALESCE(SUM(CASE WHEN flag_found = 1 THEN 1 ELSE 0 END), 0) AS flag_found_count,
			COUNT(DISTINCT user_id) AS unique_users,
			COALESCE(AVG(execution_time), 0) AS avg_execution_ms
		FROM query_logs
	`).Scan(&stats).Error
	return &stats, err
}
