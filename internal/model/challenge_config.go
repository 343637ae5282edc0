package model

import "time"

// ChallengeConfig 单例（id=1）：当前生效的正确旗帜与分值，支持不停服轮换
type ChallengeConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Flag      string    `gorm:"type:text;not null" json:"flag"`
	Points    int       `gorm:"default:500" json:"points"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy *uint     `json:"updatedBy"`
}

func (ChallengeConfig) TableName() string {
	return "challenge_config"
}
