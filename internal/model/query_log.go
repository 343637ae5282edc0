package model

import "time"

// QueryLogEntry 查询审计流水，成功失败都记一条
type QueryLogEntry struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"userId"`
	Query         string    `gorm:"type:text;not null" json:"query"`
	ExecutionTime int64     `json:"executionTime"` // 毫秒
	RowCount      int       `json:"rowCount"`
	FlagFound     bool      `gorm:"default:false;index" json:"flagFound"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (QueryLogEntry) TableName() string {
	return "query_logs"
}
