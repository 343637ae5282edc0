package service

import (
	"encoding/json"
	"regexp"
	"sql_range_backend/internal/model"
	"sql_range_backend/internal/repository"
	"sql_range_backend/internal/util"

	"gorm.io/gorm"
)

var flagFormat = regexp.MustCompile(`^FLAG\{.+\}$`)

// AdminService 管理后台：统计面板、用户明细、查询流水、旗帜与开关配置
type AdminService struct {
	UserRepo    *repository.UserRepository
	StatusRepo  *repository.ChallengeStatusRepository
	LogRepo     *repository.QueryLogRepository
	HintRepo    *repository.HintStateRepository
	AttemptRepo *repository.FlagAttemptRepository
	ConfigRepo  *repository.ChallengeConfigRepository
	SettingRepo *repository.AdminSettingRepository
}

func NewAdminService(
	userRepo *repository.UserRepository,
	statusRepo *repository.ChallengeStatusRepository,
	logRepo *repository.QueryLogRepository,
	hintRepo *repository.HintStateRepository,
	attemptRepo *repository.FlagAttemptRepository,
	configRepo *repository.ChallengeConfigRepository,
	settingRepo *repository.AdminSettingRepository,
) *AdminService {
	return &AdminService{
		UserRepo:    userRepo,
		StatusRepo:  statusRepo,
		LogRepo:     logRepo,
		HintRepo:    hintRepo,
		AttemptRepo: attemptRepo,
		ConfigRepo:  configRepo,
		SettingRepo: settingRepo,
	}
}

type DashboardStats struct {
	Users struct {
		Total  int64 `json:"total"`
		Admins int64 `json:"admins"`
	} `json:"users"`
	Challenges struct {
		Started        int64   `json:"started"`
		Completed      int64   `json:"completed"`
		CompletionRate float64 `json:"completion_rate"`
	} `json:"challenges"`
	CompletionTime struct {
		Average float64 `json:"average"`
		Fastest float64 `json:"fastest"`
		Slowest float64 `json:"slowest"`
	} `json:"completionTime"`
	Queries *repository.QueryStats `json:"queries"`
}

func (s *AdminService) GetStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	total, admins, err := s.UserRepo.CountAll()
	if err != nil {
		return nil, err
	}
	stats.Users.Total = total
	stats.Users.Admins = admins

	challenge, err := s.StatusRepo.Stats()
	if err != nil {
		return nil, err
	}
	stats.Challenges.Started = challenge.TotalStarted
	stats.Challenges.Completed = challenge.TotalCompleted
	if challenge.TotalStarted > 0 {
		stats.Challenges.CompletionRate = float64(challenge.TotalCompleted) / float64(challenge.TotalStarted) * 100
	}
	stats.CompletionTime.Average = challenge.AvgCompletionSecs
	stats.CompletionTime.Fastest = challenge.MinCompletionSecs
	stats.CompletionTime.Slowest = challenge.MaxCompletionSecs

	stats.Queries, err = s.LogRepo.Stats()
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) ListUsers() ([]repository.UserOverview, error) {
	return s.UserRepo.ListOverview()
}

type UserDetail struct {
	User      *model.User              `json:"user"`
	Challenge *StatusSnapshot          `json:"challenge"`
	Queries   []*model.QueryLogEntry   `json:"queries"`
	Attempts  []*model.FlagAttempt     `json:"flagAttempts"`
	HintState map[string]interface{}   `json:"hintState"`
}

// GetUserDetail 单个用户的完整画像：进度、最近查询、提交流水、提示状态
func (s *AdminService) GetUserDetail(userID uint) (*UserDetail, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	detail := &UserDetail{User: user}

	status, err := s.StatusRepo.GetByUserID(userID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	snapshot := &StatusSnapshot{}
	if status != nil {
		snapshot = &StatusSnapshot{
			IsStarted:      status.Started,
			StartTime:      status.StartTime,
			Completed:      status.Completed,
			CompletionTime: status.CompletionTime,
			Score:          status.Score,
			Attempts:       status.Attempts,
		}
	}
	detail.Challenge = snapshot

	detail.Queries, err = s.LogRepo.ListByUserID(userID, 100)
	if err != nil {
		return nil, err
	}

	detail.Attempts, err = s.AttemptRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	hintState, err := s.HintRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	var opened []int
	if err := json.Unmarshal([]byte(hintState.HintsOpened), &opened); err != nil {
		opened = nil
	}
	detail.HintState = map[string]interface{}{
		"hintsOpened":        opened,
		"firstHintOpenedAt":  hintState.FirstHintOpenedAt,
		"secondHintOpenedAt": hintState.SecondHintOpenedAt,
	}

	return detail, nil
}

func (s *AdminService) ListQueries(page, limit int, flagFound *bool) ([]repository.QueryLogRow, int64, error) {
	return s.LogRepo.ListAll(page, limit, flagFound)
}

// GetSettings 按键名组织成对象，前端直接按键取用
func (s *AdminService) GetSettings() (map[string]map[string]string, error) {
	settings, err := s.SettingRepo.GetAll()
	if err != nil {
		return nil, err
	}

	result := make(map[string]map[string]string, len(settings))
	for _, setting := range settings {
		result[setting.Key] = map[string]string{
			"value":       setting.Value,
			"description": setting.Description,
		}
	}
	return result, nil
}

func (s *AdminService) UpdateSetting(key, value string) error {
	if _, err := s.SettingRepo.Get(key); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrSettingNotFound
		}
		return err
	}
	return s.SettingRepo.UpdateValue(key, value)
}

func (s *AdminService) GetFlagConfig() (*model.ChallengeConfig, error) {
	cfg, err := s.ConfigRepo.Get()
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrFlagConfigNotFound
		}
		return nil, err
	}
	return cfg, nil
}

// UpdateFlagConfig 换旗即时生效，已拿到旧旗的用户提交旧旗会失败
func (s *AdminService) UpdateFlagConfig(flag string, points *int, updatedBy uint) (*model.ChallengeConfig, error) {
	if !flagFormat.MatchString(flag) {
		return nil, util.ErrInvalidFlagFormat
	}
	if points != nil && *points < 1 {
		return nil, util.ErrInvalidFlagPoints
	}

	if err := s.ConfigRepo.Update(flag, points, updatedBy); err != nil {
		return nil, err
	}
	return s.ConfigRepo.Get()
}
