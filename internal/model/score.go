package model

import "time"

// Score 记分板行，user_id 主键保证每人至多一行（并发重复提交靠 insert-or-ignore 兜底）
type Score struct {
	UserID   uint      `gorm:"primaryKey" json:"userId"`
	Points   int       `gorm:"not null" json:"points"`
	SolvedAt time.Time `gorm:"autoCreateTime" json:"solvedAt"`
}

func (Score) TableName() string {
	return "scores"
}
