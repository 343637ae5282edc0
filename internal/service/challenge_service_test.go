package service

import (
	"context"
	"database/sql"
	"sql_range_backend/internal/model"
	"sql_range_backend/internal/repository"
	"sql_range_backend/internal/sandbox"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type execSpy struct {
	calls  int
	result *sandbox.QueryResult
	err    error
}

func (s *execSpy) exec(_ context.Context, _ *sql.DB, _ string, _ time.Duration, _ int) (*sandbox.QueryResult, int64, error) {
	s.calls++
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.result, 12, nil
}

func newChallengeService(t *testing.T, db *gorm.DB, spy *execSpy) *ChallengeService {
	t.Helper()
	provisioner, err := sandbox.NewProvisioner(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(provisioner.Close)

	svc := NewChallengeService(
		provisioner,
		repository.NewQueryLogRepository(db),
		repository.NewScoreRepository(db),
		repository.NewChallengeConfigRepository(db),
		newTestConfig(),
	)
	if spy != nil {
		svc.execFn = spy.exec
	}
	return svc
}

func countLogs(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.QueryLogEntry{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestExecuteQueryRejectedByValidator(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	spy := &execSpy{}
	svc := newChallengeService(t, db, spy)

	_, err := svc.ExecuteQuery(context.Background(), 1, "DROP TABLE products")
	require.Error(t, err)
	assert.Equal(t, "Keyword 'DROP' is not allowed.", err.Error())

	// 被拒的查询不会触碰执行管道，也不进流水
	assert.Zero(t, spy.calls)
	assert.Zero(t, countLogs(t, db, 1))
}

func TestExecuteQueryLogsResult(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	spy := &execSpy{result: &sandbox.QueryResult{
		Columns:  []string{"name"},
		Rows:     [][]interface{}{{"Laptop"}, {"Phone"}},
		RowCount: 2,
	}}
	svc := newChallengeService(t, db, spy)

	resp, err := svc.ExecuteQuery(context.Background(), 1, "SELECT name FROM products")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.RowCount)
	assert.False(t, resp.FlagFound)
	assert.Nil(t, resp.Points)
	assert.Equal(t, int64(12), resp.ExecutionTime)

	var entry model.QueryLogEntry
	require.NoError(t, db.Where("user_id = ?", 1).First(&entry).Error)
	assert.Equal(t, "SELECT name FROM products", entry.Query)
	assert.Equal(t, 2, entry.RowCount)
	assert.Equal(t, int64(12), entry.ExecutionTime)
	assert.False(t, entry.FlagFound)
}

func TestExecuteQueryFlagDetectionAwardsPoints(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	spy := &execSpy{result: &sandbox.QueryResult{
		Columns:  []string{"config_data"},
		Rows:     [][]interface{}{{correctFlag}},
		RowCount: 1,
	}}
	svc := newChallengeService(t, db, spy)

	resp, err := svc.ExecuteQuery(context.Background(), 1, "SELECT config_data FROM system_internal_config")
	require.NoError(t, err)
	assert.True(t, resp.FlagFound)
	require.NotNil(t, resp.Points)
	assert.Equal(t, 500, *resp.Points)

	var entry model.QueryLogEntry
	require.NoError(t, db.Where("user_id = ?", 1).First(&entry).Error)
	assert.True(t, entry.FlagFound)

	var score model.Score
	require.NoError(t, db.Where("user_id = ?", 1).First(&score).Error)
	assert.Equal(t, 500, score.Points)
}

func TestExecuteQueryDecoyFlagNoPoints(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	spy := &execSpy{result: &sandbox.QueryResult{
		Columns:  []string{"flag_value"},
		Rows:     [][]interface{}{{sandbox.DummyFlag}},
		RowCount: 1,
	}}
	svc := newChallengeService(t, db, spy)

	resp, err := svc.ExecuteQuery(context.Background(), 1, "SELECT flag_value FROM debug_flags")
	require.NoError(t, err)
	// 诱饵也算命中旗帜，但不计分
	assert.True(t, resp.FlagFound)
	assert.Nil(t, resp.Points)

	var scoreRows int64
	require.NoError(t, db.Model(&model.Score{}).Where("user_id = ?", 1).Count(&scoreRows).Error)
	assert.Zero(t, scoreRows)
}

func TestExecuteQueryEngineFailureLogged(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	spy := &execSpy{err: sandbox.ErrQueryTimeout}
	svc := newChallengeService(t, db, spy)

	_, err := svc.ExecuteQuery(context.Background(), 1, "SELECT * FROM products")
	require.Error(t, err)
	assert.ErrorIs(t, err, sandbox.ErrQueryTimeout)

	// 失败的尝试也记流水，耗时与行数为 0
	var entry model.QueryLogEntry
	require.NoError(t, db.Where("user_id = ?", 1).First(&entry).Error)
	assert.Zero(t, entry.ExecutionTime)
	assert.Zero(t, entry.RowCount)
	assert.False(t, entry.FlagFound)
}

// 端到端：真执行器跑在真模板副本上
func TestExecuteQueryAgainstSandbox(t *testing.T) {
	db := newTestDB(t)
	seedFlagConfig(t, db, correctFlag, 500)
	svc := newChallengeService(t, db, nil)

	resp, err := svc.ExecuteQuery(context.Background(), 5, "SELECT name FROM products ORDER BY id LIMIT 3")
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, resp.Columns)
	assert.Equal(t, 3, resp.RowCount)
	assert.False(t, resp.FlagFound)
}
