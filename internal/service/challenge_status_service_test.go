package service

import (
	"sql_range_backend/internal/model"
	"sql_range_backend/internal/sandbox"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const correctFlag = "FLAG{SQL_INJECTION_MASTER_CHALLENGE_COMPLETE}"

func TestStartIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	user := seedUser(t, db, "alice")
	svc := newStatusService(t, db)

	first, err := svc.Start(user.ID)
	require.NoError(t, err)
	assert.True(t, first.IsStarted)
	assert.Equal(t, "Challenge started", first.Message)
	assert.NotZero(t, first.StartTime)

	// 再次开始不重置计时
	second, err := svc.Start(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Challenge already in progress", second.Message)
	assert.Equal(t, first.StartTime, second.StartTime)
}

func TestGetStatusAbsentRecord(t *testing.T) {
	db := newTestDB(t)
	svc := newStatusService(t, db)

	status, err := svc.GetStatus(99)
	require.NoError(t, err)
	assert.False(t, status.IsStarted)
	assert.False(t, status.Completed)
	assert.Nil(t, status.StartTime)
	assert.Nil(t, status.CompletionTime)
	assert.Nil(t, status.Score)
	assert.Zero(t, status.Attempts)
}

func TestSubmitFlagAutoStarts(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	user := seedUser(t, db, "bob")
	svc := newStatusService(t, db)

	result, err := svc.SubmitFlag(user.ID, "FLAG{WRONG}")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Incorrect flag. Keep trying!", result.Message)

	status, err := svc.GetStatus(user.ID)
	require.NoError(t, err)
	assert.True(t, status.IsStarted)
	assert.Equal(t, 1, status.Attempts)
}

func TestSubmitCorrectFlag(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	user := seedUser(t, db, "carol")
	svc := newStatusService(t, db)

	_, err := svc.Start(user.ID)
	require.NoError(t, err)

	result, err := svc.SubmitFlag(user.ID, "  "+correctFlag+"  ")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Congratulations! You have successfully completed the challenge!", result.Message)
	require.NotNil(t, result.Score)
	assert.Equal(t, 500, *result.Score)
	require.NotNil(t, result.TimeTaken)
	assert.GreaterOrEqual(t, *result.TimeTaken, int64(0))

	status, err := svc.GetStatus(user.ID)
	require.NoError(t, err)
	assert.True(t, status.Completed)
	require.NotNil(t, status.Score)
	assert.Equal(t, 500, *status.Score)
}

func TestSubmitAfterCompletedRejected(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	user := seedUser(t, db, "dave")
	svc := newStatusService(t, db)

	_, err := svc.SubmitFlag(user.ID, correctFlag)
	require.NoError(t, err)

	result, err := svc.SubmitFlag(user.ID, correctFlag)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "You have already completed this challenge", result.Message)

	// 重复提交不会多出第二行成绩
	var scoreRows int64
	require.NoError(t, db.Model(&model.Score{}).Where("user_id = ?", user.ID).Count(&scoreRows).Error)
	assert.Equal(t, int64(1), scoreRows)
}

func TestDecoyEscalation(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	user := seedUser(t, db, "eve")
	svc := newStatusService(t, db)

	var messages []string
	for i := 0; i < 3; i++ {
		result, err := svc.SubmitFlag(user.ID, sandbox.DummyFlag)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.True(t, result.IsDummy)
		assert.NotEmpty(t, result.Hint)
		messages = append(messages, result.Message)
	}

	// 三次话术各不相同且逐级加码
	assert.NotEqual(t, messages[0], messages[1])
	assert.NotEqual(t, messages[1], messages[2])
	assert.Contains(t, messages[0], "decoy")
	assert.Contains(t, messages[1], "admin_panel")
	assert.Contains(t, messages[2], "system_internal_config")

	// 第 4 次起维持最高档话术
	result, err := svc.SubmitFlag(user.ID, sandbox.DummyFlag)
	require.NoError(t, err)
	assert.Equal(t, messages[2], result.Message)

	status, err := svc.GetStatus(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, status.Attempts)
	assert.False(t, status.Completed)
}

func TestAttemptsCountEverySubmission(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	user := seedUser(t, db, "frank")
	svc := newStatusService(t, db)

	_, err := svc.SubmitFlag(user.ID, "FLAG{WRONG_1}")
	require.NoError(t, err)
	_, err = svc.SubmitFlag(user.ID, sandbox.DummyFlag)
	require.NoError(t, err)
	_, err = svc.SubmitFlag(user.ID, correctFlag)
	require.NoError(t, err)

	status, err := svc.GetStatus(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, status.Attempts)
	require.NotNil(t, status.CompletionTime)
}

func TestFlagReadFromConfigEachSubmission(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	user := seedUser(t, db, "grace")
	svc := newStatusService(t, db)

	// 换旗后旧旗失效，新旗生效
	require.NoError(t, db.Model(&model.ChallengeConfig{}).Where("id = 1").
		Updates(map[string]interface{}{"flag": "FLAG{ROTATED}", "points": 300}).Error)

	result, err := svc.SubmitFlag(user.ID, correctFlag)
	require.NoError(t, err)
	assert.False(t, result.Success)

	result, err = svc.SubmitFlag(user.ID, "FLAG{ROTATED}")
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.Score)
	assert.Equal(t, 300, *result.Score)
}

func TestSolveHookFires(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	user := seedUser(t, db, "heidi")
	svc := newStatusService(t, db)

	fired := false
	svc.SetSolveHook(func() { fired = true })

	_, err := svc.SubmitFlag(user.ID, "FLAG{WRONG}")
	require.NoError(t, err)
	assert.False(t, fired)

	_, err = svc.SubmitFlag(user.ID, correctFlag)
	require.NoError(t, err)
	assert.True(t, fired)
}

func TestTimeTakenUsesInjectedClock(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	user := seedUser(t, db, "ivan")
	svc := newStatusService(t, db)

	clock := &fixedClock{now: time.UnixMilli(1_700_000_000_000)}
	svc.now = clock.Now

	_, err := svc.Start(user.ID)
	require.NoError(t, err)

	clock.Advance(90 * time.Second)
	result, err := svc.SubmitFlag(user.ID, correctFlag)
	require.NoError(t, err)
	require.NotNil(t, result.TimeTaken)
	assert.Equal(t, int64(90_000), *result.TimeTaken)
}
