package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sql_range_backend/internal/config"
	"sql_range_backend/internal/controller"
	"sql_range_backend/internal/repository"
	"sql_range_backend/internal/sandbox"
	"sql_range_backend/internal/service"
	"sql_range_backend/pkg/cache"
	"sql_range_backend/pkg/database"
	"sql_range_backend/pkg/logger"
	"sql_range_backend/pkg/monitoring"
	"sql_range_backend/pkg/security"
	"sql_range_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	services        *services
	provisioner     *sandbox.Provisioner
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user            *repository.UserRepository
	challengeStatus *repository.ChallengeStatusRepository
	flagAttempt     *repository.FlagAttemptRepository
	hintState       *repository.HintStateRepository
	queryLog        *repository.QueryLogRepository
	challengeConfig *repository.ChallengeConfigRepository
	score           *repository.ScoreRepository
	adminSetting    *repository.AdminSettingRepository
}

type services struct {
	auth          *service.AuthService
	challenge     *service.ChallengeService
	status        *service.ChallengeStatusService
	hint          *service.HintService
	scoreboard    *service.ScoreboardService
	scoreboardHub *service.ScoreboardHub
	admin         *service.AdminService
}

type controllers struct {
	auth       *controller.AuthController
	challenge  *controller.ChallengeController
	scoreboard *controller.ScoreboardController
	admin      *controller.AdminController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig 热更新回调入口，configwatcher 在配置文件变化时调用
func (a *App) ReloadConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:            repository.NewUserRepository(db),
		challengeStatus: repository.NewChallengeStatusRepository(db),
		flagAttempt:     repository.NewFlagAttemptRepository(db),
		hintState:       repository.NewHintStateRepository(db),
		queryLog:        repository.NewQueryLogRepository(db),
		challengeConfig: repository.NewChallengeConfigRepository(db),
		score:           repository.NewScoreRepository(db),
		adminSetting:    repository.NewAdminSettingRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, store cache.Store, provisioner *sandbox.Provisioner) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, store, cfg)
	s.challenge = service.NewChallengeService(provisioner, repos.queryLog, repos.score, repos.challengeConfig, cfg)
	s.status = service.NewChallengeStatusService(repos.challengeStatus, repos.flagAttempt, repos.score, repos.challengeConfig, cfg)
	s.hint = service.NewHintService(repos.hintState, cfg)
	s.scoreboard = service.NewScoreboardService(repos.score)
	s.admin = service.NewAdminService(
		repos.user,
		repos.challengeStatus,
		repos.queryLog,
		repos.hintState,
		repos.flagAttempt,
		repos.challengeConfig,
		repos.adminSetting,
	)

	s.scoreboardHub = service.NewScoreboardHub(s.scoreboard)
	go s.scoreboardHub.Run()

	// 通关即时推一帧榜单
	s.status.SetSolveHook(s.scoreboardHub.NotifySolve)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, s.status),
		challenge:  controller.NewChallengeController(s.challenge, s.status, s.hint),
		scoreboard: controller.NewScoreboardController(s.scoreboard, s.scoreboardHub),
		admin:      controller.NewAdminController(s.admin),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.GlobalPerMinute, time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// 会话与限流计数后端：单机默认内存，多实例切 Redis
	var store cache.Store = cache.NewMemoryStore()
	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		store = cache.NewRedisStore(rdb)
	}

	provisioner, err := sandbox.NewProvisioner(cfg.Challenge.DataDir)
	if err != nil {
		logger.Log.Fatal("Failed to initialize challenge sandbox", zap.Error(err))
	}

	app := &App{
		Config:      cfg,
		DB:          db,
		provisioner: provisioner,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, store, provisioner)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("sql-range", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, store, cfg)

	// 服务层共享同一份 Config 指针，原地覆盖即可让沙箱超时、提示间隔等新值生效
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		*app.Config = *newCfg
		logger.Log.Info("Configuration reloaded",
			zap.Int("queryTimeoutMs", newCfg.Challenge.QueryTimeoutMs),
			zap.Int("maxRows", newCfg.Challenge.MaxRows))
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.services != nil && a.services.scoreboardHub != nil {
		a.services.scoreboardHub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	// 关掉所有用户沙箱库句柄
	a.provisioner.Close()

	log.Println("Server exiting")
}
