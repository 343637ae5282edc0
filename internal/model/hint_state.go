package model

// HintState 每个用户一行。HintsOpened 是 JSON 数组（按解锁顺序追加，只增不减）；
// 第 1、2 个提示的打开时间用于门控下一档的解锁。
type HintState struct {
	UserID             uint   `gorm:"primaryKey" json:"userId"`
	HintsOpened        string `gorm:"type:text;default:'[]'" json:"hintsOpened"`
	FirstHintOpenedAt  *int64 `json:"firstHintOpenedAt"`
	SecondHintOpenedAt *int64 `json:"secondHintOpenedAt"`
}

func (HintState) TableName() string {
	return "hint_states"
}
