package service

import (
	"context"
	"fmt"
	"sql_range_backend/internal/config"
	"sql_range_backend/internal/model"
	"sql_range_backend/internal/repository"
	"sql_range_backend/internal/util"
	"sql_range_backend/pkg/cache"
	"sql_range_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 注册登录 + 服务端会话。
// JWT 自带过期时间，会话存一份在缓存里是为了支持主动注销。
type AuthService struct {
	UserRepo *repository.UserRepository
	Sessions cache.Store
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, sessions cache.Store, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Sessions: sessions,
		Cfg:      cfg,
	}
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// Register 成功后直接发令牌，注册完不用再登录一次
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	exists, err := s.UserRepo.ExistsByUsernameOrEmail(username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Log.Info("user registered", zap.Uint("userId", user.ID), zap.String("username", username))
	return s.issueSession(ctx, user)
}

// Login identity 同时接受用户名和邮箱。
// 用户不存在和密码错误统一回 Invalid credentials，不给枚举账号的机会。
func (s *AuthService) Login(ctx context.Context, identity, password string) (*AuthResult, error) {
	user, err := s.UserRepo.FindByUsernameOrEmail(identity)
	if err != nil {
		return nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	return s.issueSession(ctx, user)
}

func (s *AuthService) issueSession(ctx context.Context, user *model.User) (*AuthResult, error) {
	sessionID := uuid.NewString()

	token, err := util.GenerateJWT(user, sessionID, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	err = s.Sessions.Set(ctx, sessionKey(sessionID), fmt.Sprintf("%d", user.ID), s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}

// Logout 删除服务端会话，令牌即刻失效
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if claims.ID == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, sessionKey(claims.ID))
}

// ValidateSession 令牌签名有效还不够，会话必须仍在缓存中
func (s *AuthService) ValidateSession(ctx context.Context, claims *util.Claims) (bool, error) {
	if claims.ID == "" {
		return false, nil
	}
	_, ok, err := s.Sessions.Get(ctx, sessionKey(claims.ID))
	return ok, err
}

// GetProfile 带上闯关进度一起返回
func (s *AuthService) GetProfile(userID uint, statusService *ChallengeStatusService) (map[string]interface{}, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	status, err := statusService.GetStatus(userID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"user":      user,
		"challenge": status,
	}, nil
}
