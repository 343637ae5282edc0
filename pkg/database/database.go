package database

import (
	"log"
	"os"
	"path/filepath"
	"sql_range_backend/internal/config"
	"sql_range_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		os.MkdirAll(dir, 0755)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Database.Path+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.ChallengeStatus{},
		&model.FlagAttempt{},
		&model.HintState{},
		&model.QueryLogEntry{},
		&model.ChallengeConfig{},
		&model.Score{},
		&model.AdminSetting{},
	)
	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := seedDefaults(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// seedDefaults 幂等种子：旗帜配置单例、后台开关、默认管理员，只在空库时落数据
func seedDefaults(db *gorm.DB, cfg *config.Config) error {
	var count int64
	db.Model(&model.ChallengeConfig{}).Count(&count)
	if count == 0 {
		flagConfig := &model.ChallengeConfig{
			ID:     1,
			Flag:   cfg.Challenge.DefaultFlag,
			Points: cfg.Challenge.DefaultPoints,
		}
		if err := db.Create(flagConfig).Error; err != nil {
			return err
		}
	}

	var settingCount int64
	db.Model(&model.AdminSetting{}).Count(&settingCount)
	if settingCount == 0 {
		defaultSettings := []model.AdminSetting{
			{Key: "challenge_enabled", Value: "true", Description: "Whether the challenge is enabled for users"},
			{Key: "registration_enabled", Value: "true", Description: "Whether new user registration is enabled"},
			{Key: "max_queries_per_user", Value: "1000", Description: "Maximum number of queries per user"},
		}
		for _, s := range defaultSettings {
			if err := db.Create(&s).Error; err != nil {
				return err
			}
		}
	}

	var adminCount int64
	db.Model(&model.User{}).Where("is_admin = ?", true).Count(&adminCount)
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := &model.User{
			Username: "admin",
			Email:    "admin@example.com",
			Password: string(hash),
			IsAdmin:  true,
		}
		if err := db.Create(admin).Error; err != nil {
			return err
		}
		log.Println("Default admin user created (username: admin)")
	}

	return nil
}
