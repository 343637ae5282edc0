package service

import (
	"sql_range_backend/internal/config"
	"sql_range_backend/internal/model"
	"sql_range_backend/internal/repository"
	"sql_range_backend/internal/sandbox"
	"sql_range_backend/internal/util"
	"sql_range_backend/pkg/logger"
	"sql_range_backend/pkg/monitoring"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChallengeStatusService 闯关状态机：NOT_STARTED → IN_PROGRESS → COMPLETED（终态）。
// 提交未开始时自动开始（宽松策略，见 DESIGN.md）。
// 同一用户的状态变更全部走 per-user 锁，记分板行靠 insert-or-ignore 保证至多一行。
type ChallengeStatusService struct {
	StatusRepo  *repository.ChallengeStatusRepository
	AttemptRepo *repository.FlagAttemptRepository
	ScoreRepo   *repository.ScoreRepository
	ConfigRepo  *repository.ChallengeConfigRepository
	Cfg         *config.Config

	userLocks *util.KeyedMutex
	now       func() time.Time
	onSolve   func()
}

func NewChallengeStatusService(
	statusRepo *repository.ChallengeStatusRepository,
	attemptRepo *repository.FlagAttemptRepository,
	scoreRepo *repository.ScoreRepository,
	configRepo *repository.ChallengeConfigRepository,
	cfg *config.Config,
) *ChallengeStatusService {
	return &ChallengeStatusService{
		StatusRepo:  statusRepo,
		AttemptRepo: attemptRepo,
		ScoreRepo:   scoreRepo,
		ConfigRepo:  configRepo,
		Cfg:         cfg,
		userLocks:   util.NewKeyedMutex(),
		now:         time.Now,
	}
}

// SetSolveHook 有人通关时通知外部（记分板推送）
func (s *ChallengeStatusService) SetSolveHook(hook func()) {
	s.onSolve = hook
}

type StartResult struct {
	IsStarted bool   `json:"isStarted"`
	StartTime int64  `json:"startTime"`
	Message   string `json:"message"`
}

type StatusSnapshot struct {
	IsStarted      bool   `json:"isStarted"`
	StartTime      *int64 `json:"startTime"`
	Completed      bool   `json:"completed"`
	CompletionTime *int64 `json:"completionTime"`
	Score          *int   `json:"score"`
	Attempts       int    `json:"attempts"`
}

type SubmitResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	IsDummy        bool   `json:"isDummy,omitempty"`
	Hint           string `json:"hint,omitempty"`
	CompletionTime *int64 `json:"completionTime,omitempty"`
	TimeTaken      *int64 `json:"timeTaken,omitempty"`
	Score          *int   `json:"score,omitempty"`
}

// nowMs 全程用毫秒时间戳，和存储格式一致
func (s *ChallengeStatusService) nowMs() int64 {
	return s.now().UnixMilli()
}

// Start 幂等开始：已在进行中时原样返回原 start_time，绝不重置计时
func (s *ChallengeStatusService) Start(userID uint) (*StartResult, error) {
	unlock := s.userLocks.Lock(userID)
	defer unlock()

	return s.startLocked(userID)
}

func (s *ChallengeStatusService) startLocked(userID uint) (*StartResult, error) {
	status, err := s.StatusRepo.GetByUserID(userID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if status != nil && status.Started {
		return &StartResult{
			IsStarted: true,
			StartTime: derefInt64(status.StartTime),
			Message:   "Challenge already in progress",
		}, nil
	}

	now := s.nowMs()
	fresh := &model.ChallengeStatus{
		UserID:    userID,
		Started:   true,
		StartTime: &now,
	}
	if status != nil {
		fresh.Attempts = status.Attempts
		fresh.LastAttemptTime = status.LastAttemptTime
	}
	if err := s.StatusRepo.Upsert(fresh); err != nil {
		return nil, err
	}

	return &StartResult{
		IsStarted: true,
		StartTime: now,
		Message:   "Challenge started",
	}, nil
}

// GetStatus 无记录按未开始返回，所有可空字段留空
func (s *ChallengeStatusService) GetStatus(userID uint) (*StatusSnapshot, error) {
	status, err := s.StatusRepo.GetByUserID(userID)
	if err == gorm.ErrRecordNotFound {
		return &StatusSnapshot{}, nil
	}
	if err != nil {
		return nil, err
	}

	return &StatusSnapshot{
		IsStarted:      status.Started,
		StartTime:      status.StartTime,
		Completed:      status.Completed,
		CompletionTime: status.CompletionTime,
		Score:          status.Score,
		Attempts:       status.Attempts,
	}, nil
}

// flagConfig 每次提交都从单例配置读当前旗帜，支持不停服轮换；
// 配置行缺失时退回启动配置的缺省值，闯关不因此中断（只记一条错误日志）。
func (s *ChallengeStatusService) flagConfig() (string, int) {
	cfg, err := s.ConfigRepo.Get()
	if err != nil {
		logger.Log.Error("challenge config unavailable, falling back to defaults", zap.Error(err))
		return s.Cfg.Challenge.DefaultFlag, s.Cfg.Challenge.DefaultPoints
	}
	return cfg.Flag, cfg.Points
}

// SubmitFlag 旗帜校验主路径。每次提交无论对错都计一次 attempts。
func (s *ChallengeStatusService) SubmitFlag(userID uint, flag string) (*SubmitResult, error) {
	unlock := s.userLocks.Lock(userID)
	defer unlock()

	correctFlag, points := s.flagConfig()

	status, err := s.StatusRepo.GetByUserID(userID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	// 未开始先自动开始，不让用户因为忘点开始按钮而卡死
	if status == nil || !status.Started {
		if _, err := s.startLocked(userID); err != nil {
			return nil, err
		}
		status, err = s.StatusRepo.GetByUserID(userID)
		if err != nil {
			return nil, err
		}
	}

	if status.Completed {
		monitoring.FlagSubmissionCounter.WithLabelValues("conflict").Inc()
		return &SubmitResult{
			Success: false,
			Message: "You have already completed this challenge",
		}, nil
	}

	now := s.nowMs()
	if err := s.StatusRepo.IncrementAttempts(userID, now); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(flag)

	if trimmed == sandbox.DummyFlag {
		return s.handleDummySubmission(userID, trimmed)
	}

	if trimmed != correctFlag {
		s.trackAttempt(userID, trimmed, false, false)
		monitoring.FlagSubmissionCounter.WithLabelValues("incorrect").Inc()
		// 不透露差在哪，防止拿提交接口当比对神谕
		return &SubmitResult{
			Success: false,
			Message: "Incorrect flag. Keep trying!",
		}, nil
	}

	s.trackAttempt(userID, trimmed, false, true)

	if err := s.StatusRepo.MarkCompleted(userID, now, points); err != nil {
		return nil, err
	}
	if err := s.ScoreRepo.InsertIgnore(&model.Score{UserID: userID, Points: points}); err != nil {
		return nil, err
	}

	timeTaken := now - derefInt64(status.StartTime)
	monitoring.FlagSubmissionCounter.WithLabelValues("correct").Inc()
	logger.Log.Info("challenge solved",
		zap.Uint("userId", userID),
		zap.Int64("timeTakenMs", timeTaken),
		zap.Int("points", points),
	)

	if s.onSolve != nil {
		s.onSolve()
	}

	return &SubmitResult{
		Success:        true,
		Message:        "Congratulations! You have successfully completed the challenge!",
		CompletionTime: &now,
		TimeTaken:      &timeTaken,
		Score:          &points,
	}, nil
}

// handleDummySubmission 诱饵旗是刻意设计的误导，话术按历史提交次数递进加码
func (s *ChallengeStatusService) handleDummySubmission(userID uint, flag string) (*SubmitResult, error) {
	previous, err := s.AttemptRepo.CountDummy(userID)
	if err != nil {
		return nil, err
	}

	s.trackAttempt(userID, flag, true, false)
	monitoring.FlagSubmissionCounter.WithLabelValues("decoy").Inc()

	switch previous {
	case 0:
		return &SubmitResult{
			Success: false,
			IsDummy: true,
			Message: "🎯 Good job finding a flag! But wait... this seems too easy. This might be a decoy. Real hackers dig deeper. Try harder!",
			Hint:    "Explore hidden tables",
		}, nil
	case 1:
		return &SubmitResult{
			Success: false,
			IsDummy: true,
			Message: "🎭 Nice try! But this is just a decoy flag. The real flag is hidden deeper. Look for clues in the admin_panel table about how sensitive data is protected.",
			Hint:    "Check the cipher_method in admin_panel table",
		}, nil
	default:
		return &SubmitResult{
			Success: false,
			IsDummy: true,
			Message: "🔍 You already found this dummy flag! The real flag is encrypted. Check system_internal_config table and remember the cipher method from admin_panel.",
			Hint:    "ROT13 cipher is being used",
		}, nil
	}
}

// trackAttempt 提交流水只追加；写失败不阻断主流程
func (s *ChallengeStatusService) trackAttempt(userID uint, flag string, isDummy, isCorrect bool) {
	err := s.AttemptRepo.Create(&model.FlagAttempt{
		UserID:        userID,
		FlagSubmitted: flag,
		IsDummy:       isDummy,
		IsCorrect:     isCorrect,
	})
	if err != nil {
		logger.Log.Error("failed to record flag attempt", zap.Error(err), zap.Uint("userId", userID))
	}
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
