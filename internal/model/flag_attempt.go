package model

import "time"

// FlagAttempt 旗帜提交流水，只追加不修改，用于诱饵旗的递进提示
type FlagAttempt struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"userId"`
	FlagSubmitted string    `gorm:"type:text;not null" json:"flagSubmitted"`
	IsDummy       bool      `gorm:"default:false" json:"isDummy"`
	IsCorrect     bool      `gorm:"default:false" json:"isCorrect"`
	SubmittedAt   time.Time `gorm:"autoCreateTime" json:"submittedAt"`
}

func (FlagAttempt) TableName() string {
	return "flag_attempts"
}
