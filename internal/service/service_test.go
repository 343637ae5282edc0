package service

import (
	"sql_range_backend/internal/config"
	"sql_range_backend/internal/model"
	"sql_range_backend/internal/repository"
	"sql_range_backend/pkg/cache"
	"sql_range_backend/pkg/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.ChallengeStatus{},
		&model.FlagAttempt{},
		&model.HintState{},
		&model.QueryLogEntry{},
		&model.ChallengeConfig{},
		&model.Score{},
		&model.AdminSetting{},
	))
	return db
}

func newTestStore() cache.Store {
	return cache.NewMemoryStore()
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Challenge.ApplyDefaults()
	cfg.Challenge.DefaultFlag = "FLAG{SQL_INJECTION_MASTER_CHALLENGE_COMPLETE}"
	cfg.Challenge.DefaultPoints = 500
	return cfg
}

func seedFlagConfig(t *testing.T, db *gorm.DB, flag string, points int) {
	t.Helper()
	require.NoError(t, db.Create(&model.ChallengeConfig{ID: 1, Flag: flag, Points: points}).Error)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: username + "@test.local", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newStatusService(t *testing.T, db *gorm.DB) *ChallengeStatusService {
	t.Helper()
	return NewChallengeStatusService(
		repository.NewChallengeStatusRepository(db),
		repository.NewFlagAttemptRepository(db),
		repository.NewScoreRepository(db),
		repository.NewChallengeConfigRepository(db),
		newTestConfig(),
	)
}

// fixedClock 让时间门测试可确定
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time          { return c.now }
func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
