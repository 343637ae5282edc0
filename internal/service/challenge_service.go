package service

import (
	"context"
	"database/sql"
	"sql_range_backend/internal/config"
	"sql_range_backend/internal/model"
	"sql_range_backend/internal/repository"
	"sql_range_backend/internal/sandbox"
	"sql_range_backend/pkg/logger"
	"sql_range_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

// QueryResponse 查询结果连同检测结论一起返回
type QueryResponse struct {
	Columns       []string        `json:"columns"`
	Rows          [][]interface{} `json:"rows"`
	RowCount      int             `json:"rowCount"`
	ExecutionTime int64           `json:"executionTime"`
	FlagFound     bool            `json:"flagFound"`
	Points        *int            `json:"points,omitempty"`
}

// ChallengeService 查询主管道：校验 → 取用户沙箱库 → 限时执行 → 扫旗 → 记审计流水。
// 校验被拒的查询不进流水（拒绝发生在执行管道之前）。
type ChallengeService struct {
	Provisioner *sandbox.Provisioner
	LogRepo     *repository.QueryLogRepository
	ScoreRepo   *repository.ScoreRepository
	ConfigRepo  *repository.ChallengeConfigRepository
	Cfg         *config.Config

	// 测试替身入口
	execFn func(ctx context.Context, db *sql.DB, query string, timeout time.Duration, maxRows int) (*sandbox.QueryResult, int64, error)
}

func NewChallengeService(
	provisioner *sandbox.Provisioner,
	logRepo *repository.QueryLogRepository,
	scoreRepo *repository.ScoreRepository,
	configRepo *repository.ChallengeConfigRepository,
	cfg *config.Config,
) *ChallengeService {
	return &ChallengeService{
		Provisioner: provisioner,
		LogRepo:     logRepo,
		ScoreRepo:   scoreRepo,
		ConfigRepo:  configRepo,
		Cfg:         cfg,
		execFn:      sandbox.Execute,
	}
}

func (s *ChallengeService) currentFlag() (string, int) {
	cfg, err := s.ConfigRepo.Get()
	if err != nil {
		logger.Log.Error("challenge config unavailable, falling back to defaults", zap.Error(err))
		return s.Cfg.Challenge.DefaultFlag, s.Cfg.Challenge.DefaultPoints
	}
	return cfg.Flag, cfg.Points
}

// ExecuteQuery 玩家 SQL 入口。返回的 error 都是可以直接回给用户的文案。
func (s *ChallengeService) ExecuteQuery(ctx context.Context, userID uint, query string) (*QueryResponse, error) {
	if err := sandbox.ValidateQuery(query, s.Cfg.Challenge.MaxQueryLength); err != nil {
		monitoring.QueryCounter.WithLabelValues("rejected").Inc()
		return nil, err
	}

	db, err := s.Provisioner.GetOrCreate(userID)
	if err != nil {
		logger.Log.Error("failed to provision challenge database", zap.Error(err), zap.Uint("userId", userID))
		return nil, err
	}

	result, elapsed, err := s.execFn(ctx, db, query, s.Cfg.Challenge.QueryTimeout(), s.Cfg.Challenge.MaxRows)
	if err != nil {
		// 失败的尝试同样要进流水，耗时和行数记 0
		s.logQuery(userID, query, 0, 0, false)
		if err == sandbox.ErrQueryTimeout {
			monitoring.QueryCounter.WithLabelValues("timeout").Inc()
		} else {
			monitoring.QueryCounter.WithLabelValues("engine_error").Inc()
		}
		return nil, err
	}

	monitoring.QueryCounter.WithLabelValues("ok").Inc()
	monitoring.QueryDuration.Observe(float64(elapsed) / 1000.0)

	correctFlag, points := s.currentFlag()
	kind := sandbox.NewDetector(correctFlag).Scan(result.Rows)
	flagFound := kind != sandbox.FlagNone

	s.logQuery(userID, query, elapsed, result.RowCount, flagFound)

	resp := &QueryResponse{
		Columns:       result.Columns,
		Rows:          result.Rows,
		RowCount:      result.RowCount,
		ExecutionTime: elapsed,
		FlagFound:     flagFound,
	}

	// 只有真旗（精确形态）在查询侧计分；诱饵和未解码形态只亮 flagFound
	if kind == sandbox.FlagExact {
		if err := s.ScoreRepo.InsertIgnore(&model.Score{UserID: userID, Points: points}); err != nil {
			logger.Log.Error("failed to award query points", zap.Error(err), zap.Uint("userId", userID))
		} else {
			resp.Points = &points
		}
	}

	return resp, nil
}

func (s *ChallengeService) logQuery(userID uint, query string, elapsed int64, rowCount int, flagFound bool) {
	err := s.LogRepo.Create(&model.QueryLogEntry{
		UserID:        userID,
		Query:         query,
		ExecutionTime: elapsed,
		RowCount:      rowCount,
		FlagFound:     flagFound,
	})
	if err != nil {
		logger.Log.Error("failed to log query", zap.Error(err), zap.Uint("userId", userID))
	}
}
