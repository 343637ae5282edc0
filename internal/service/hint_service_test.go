package service

import (
	"sql_range_backend/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHintService(t *testing.T) (*HintService, *fixedClock) {
	t.Helper()
	db := newTestDB(t)
	svc := NewHintService(repository.NewHintStateRepository(db), newTestConfig())
	clock := &fixedClock{now: time.UnixMilli(1_700_000_000_000)}
	svc.now = clock.Now
	return svc, clock
}

func TestGetHintsInitialState(t *testing.T) {
	svc, _ := newHintService(t)

	hints, err := svc.GetHints(1)
	require.NoError(t, err)
	require.Len(t, hints, 3)

	for _, h := range hints {
		assert.False(t, h.Unlocked)
		// 内容在解锁前不下发
		assert.Empty(t, h.Content)
	}

	// 1 号无前置；2、3 号前置未开，连解锁时间都没有
	assert.Nil(t, hints[0].UnlocksAt)
	assert.Nil(t, hints[1].UnlocksAt)
	assert.Nil(t, hints[2].UnlocksAt)
	assert.Equal(t, "Table Enumeration", hints[0].Title)
	assert.Equal(t, "Finding Hidden Tables", hints[1].Title)
	assert.Equal(t, "Flag Assembly", hints[2].Title)
}

func TestUnlockFirstHint(t *testing.T) {
	svc, _ := newHintService(t)

	hints, err := svc.UnlockHint(1, 1)
	require.NoError(t, err)

	assert.True(t, hints[0].Unlocked)
	assert.NotEmpty(t, hints[0].Content)
	// 2 号拿到了解锁时间戳
	require.NotNil(t, hints[1].UnlocksAt)
	assert.False(t, hints[1].Unlocked)
}

func TestUnlockHintInvalidID(t *testing.T) {
	svc, _ := newHintService(t)

	_, err := svc.UnlockHint(1, 0)
	assert.EqualError(t, err, "Invalid hint ID")
	_, err = svc.UnlockHint(1, 4)
	assert.EqualError(t, err, "Invalid hint ID")
}

func TestUnlockHintTwiceRejected(t *testing.T) {
	svc, _ := newHintService(t)

	_, err := svc.UnlockHint(1, 1)
	require.NoError(t, err)
	_, err = svc.UnlockHint(1, 1)
	assert.EqualError(t, err, "Hint already unlocked")
}

func TestSecondHintRequiresFirst(t *testing.T) {
	svc, _ := newHintService(t)

	_, err := svc.UnlockHint(1, 2)
	assert.EqualError(t, err, "Previous hint must be unlocked first")
}

func TestSecondHintTimeGate(t *testing.T) {
	svc, clock := newHintService(t)

	_, err := svc.UnlockHint(1, 1)
	require.NoError(t, err)

	// 门禁未到，报剩余秒数
	clock.Advance(100 * time.Second)
	_, err = svc.UnlockHint(1, 2)
	require.Error(t, err)
	assert.Equal(t, "Hint unlocks in 200 seconds", err.Error())

	clock.Advance(200 * time.Second)
	hints, err := svc.UnlockHint(1, 2)
	require.NoError(t, err)
	assert.True(t, hints[1].Unlocked)
	assert.NotEmpty(t, hints[1].Content)
}

func TestThirdHintFullLadder(t *testing.T) {
	svc, clock := newHintService(t)

	_, err := svc.UnlockHint(1, 1)
	require.NoError(t, err)

	_, err = svc.UnlockHint(1, 3)
	assert.EqualError(t, err, "Previous hint must be unlocked first")

	clock.Advance(300 * time.Second)
	_, err = svc.UnlockHint(1, 2)
	require.NoError(t, err)

	_, err = svc.UnlockHint(1, 3)
	require.Error(t, err)
	assert.Equal(t, "Hint unlocks in 600 seconds", err.Error())

	clock.Advance(600 * time.Second)
	hints, err := svc.UnlockHint(1, 3)
	require.NoError(t, err)
	assert.True(t, hints[2].Unlocked)

	// 全部解锁后视图稳定
	hints, err = svc.GetHints(1)
	require.NoError(t, err)
	for _, h := range hints {
		assert.True(t, h.Unlocked)
		assert.NotEmpty(t, h.Content)
	}
}

func TestHintStatesIsolatedPerUser(t *testing.T) {
	svc, _ := newHintService(t)

	_, err := svc.UnlockHint(1, 1)
	require.NoError(t, err)

	hints, err := svc.GetHints(2)
	require.NoError(t, err)
	assert.False(t, hints[0].Unlocked)
}
