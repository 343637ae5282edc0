package model

// ChallengeStatus 每个用户一行的闯关状态，时间均为毫秒时间戳。
// 不变式：completed=true 时 completion_time 必有值，且不早于 start_time。
type ChallengeStatus struct {
	UserID          uint   `gorm:"primaryKey" json:"userId"`
	Started         bool   `gorm:"default:false" json:"started"`
	StartTime       *int64 `json:"startTime"`
	Completed       bool   `gorm:"default:false" json:"completed"`
	CompletionTime  *int64 `json:"completionTime"`
	Score           *int   `json:"score"`
	Attempts        int    `gorm:"default:0" json:"attempts"`
	LastAttemptTime *int64 `json:"lastAttemptTime"`
}

func (ChallengeStatus) TableName() string {
	return "challenge_status"
}
