package service

import (
	"sql_range_backend/internal/model"
	"sql_range_backend/internal/repository"
	"sql_range_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAdminService(t *testing.T, db *gorm.DB) *AdminService {
	t.Helper()
	return NewAdminService(
		repository.NewUserRepository(db),
		repository.NewChallengeStatusRepository(db),
		repository.NewQueryLogRepository(db),
		repository.NewHintStateRepository(db),
		repository.NewFlagAttemptRepository(db),
		repository.NewChallengeConfigRepository(db),
		repository.NewAdminSettingRepository(db),
	)
}

func TestUpdateFlagConfigValidation(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	admin := seedUser(t, db, "admin")
	svc := newAdminService(t, db)

	_, err := svc.UpdateFlagConfig("not-a-flag", nil, admin.ID)
	assert.ErrorIs(t, err, util.ErrInvalidFlagFormat)

	_, err = svc.UpdateFlagConfig("FLAG{}", nil, admin.ID)
	assert.ErrorIs(t, err, util.ErrInvalidFlagFormat)

	zero := 0
	_, err = svc.UpdateFlagConfig("FLAG{NEW}", &zero, admin.ID)
	assert.ErrorIs(t, err, util.ErrInvalidFlagPoints)

	points := 250
	cfg, err := svc.UpdateFlagConfig("FLAG{NEW}", &points, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "FLAG{NEW}", cfg.Flag)
	assert.Equal(t, 250, cfg.Points)
	require.NotNil(t, cfg.UpdatedBy)
	assert.Equal(t, admin.ID, *cfg.UpdatedBy)
}

func TestUpdateFlagKeepsPointsWhenOmitted(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	admin := seedUser(t, db, "admin")
	svc := newAdminService(t, db)

	cfg, err := svc.UpdateFlagConfig("FLAG{ONLY_FLAG_CHANGED}", nil, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Points)
}

func TestGetStats(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	svc := newAdminService(t, db)

	base := int64(1_700_000_000_000)
	seedSolvedUser(t, db, "winner", 500, base, base+120_000)
	runner := seedUser(t, db, "runner")
	startMs := base
	require.NoError(t, db.Create(&model.ChallengeStatus{UserID: runner.ID, Started: true, StartTime: &startMs}).Error)
	require.NoError(t, db.Create(&model.QueryLogEntry{UserID: runner.ID, Query: "SELECT 1", ExecutionTime: 4, RowCount: 1}).Error)

	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Users.Total)
	assert.Equal(t, int64(2), stats.Challenges.Started)
	assert.Equal(t, int64(1), stats.Challenges.Completed)
	assert.InDelta(t, 50.0, stats.Challenges.CompletionRate, 0.01)
	assert.InDelta(t, 120.0, stats.CompletionTime.Average, 0.01)
	assert.Equal(t, int64(1), stats.Queries.TotalQueries)
}

func TestUpdateSettingUnknownKey(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(t, db)

	err := svc.UpdateSetting("nope", "1")
	assert.ErrorIs(t, err, util.ErrSettingNotFound)

	require.NoError(t, db.Create(&model.AdminSetting{Key: "hints_enabled", Value: "true", Description: "provide hints"}).Error)
	require.NoError(t, svc.UpdateSetting("hints_enabled", "false"))

	settings, err := svc.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, "false", settings["hints_enabled"]["value"])
}

func TestGetUserDetail(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	user := seedUser(t, db, "probe")
	svc := newAdminService(t, db)

	require.NoError(t, db.Create(&model.QueryLogEntry{UserID: user.ID, Query: "SELECT 1", RowCount: 1}).Error)
	require.NoError(t, db.Create(&model.FlagAttempt{UserID: user.ID, FlagSubmitted: "FLAG{X}", IsDummy: false}).Error)

	detail, err := svc.GetUserDetail(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "probe", detail.User.Username)
	assert.Len(t, detail.Queries, 1)
	assert.Len(t, detail.Attempts, 1)
	assert.NotNil(t, detail.HintState)

	_, err = svc.GetUserDetail(9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}
