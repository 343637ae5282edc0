package service

import (
	"context"
	"sql_range_backend/internal/repository"
	"sql_range_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()
	cfg := newTestConfig()
	cfg.JWT.Secret = "test-secret-key-for-unit-tests-only!!"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), newTestStore(), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	result, err := svc.Register(ctx, "alice", "alice@test.local", "s3cretpass")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "alice", result.User.Username)
	// 密码散列存储
	assert.NotEqual(t, "s3cretpass", result.User.Password)

	// 用户名或邮箱都能登录
	_, err = svc.Login(ctx, "alice", "s3cretpass")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "alice@test.local", "s3cretpass")
	require.NoError(t, err)
}

func TestRegisterDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob", "bob@test.local", "s3cretpass")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "other@test.local", "s3cretpass")
	assert.ErrorIs(t, err, util.ErrUserExists)
	_, err = svc.Register(ctx, "other", "bob@test.local", "s3cretpass")
	assert.ErrorIs(t, err, util.ErrUserExists)
}

func TestLoginBadCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol", "carol@test.local", "s3cretpass")
	require.NoError(t, err)

	// 账号不存在和密码错误统一文案
	_, err = svc.Login(ctx, "carol", "wrongpass")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "s3cretpass")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	result, err := svc.Register(ctx, "dave", "dave@test.local", "s3cretpass")
	require.NoError(t, err)

	claims, err := util.ParseJWT(result.Token, svc.Cfg.JWT.Secret)
	require.NoError(t, err)

	alive, err := svc.ValidateSession(ctx, claims)
	require.NoError(t, err)
	assert.True(t, alive)

	require.NoError(t, svc.Logout(ctx, claims))

	// 令牌签名照旧有效，但会话已作废
	alive, err = svc.ValidateSession(ctx, claims)
	require.NoError(t, err)
	assert.False(t, alive)
}
