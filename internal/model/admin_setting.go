package model

type AdminSetting struct {
	Key         string `gorm:"primaryKey;size:100" json:"key"`
	Value       string `gorm:"not null" json:"value"`
	Description string `json:"description"`
}

func (AdminSetting) TableName() string {
	return "admin_settings"
}
