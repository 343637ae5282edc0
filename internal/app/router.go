package app

import (
	"sql_range_backend/internal/config"
	"sql_range_backend/internal/middleware"
	"sql_range_backend/pkg/cache"
	"sql_range_backend/pkg/monitoring"
	"sql_range_backend/pkg/security"
	"time"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, store cache.Store, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 凭据接口单独一套按 IP 的配额，防撞库
	authLimiter := security.RateLimiter(cfg.RateLimit.AuthPerQuarterHour, 15*time.Minute)

	// 1. 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", authLimiter, c.auth.Register)
		public.POST("/login", authLimiter, c.auth.Login)
		public.GET("/scoreboard", c.scoreboard.GetScoreboard)
		public.GET("/scoreboard/ws", c.scoreboard.HandleWS)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, a.services.auth))
	{
		authGroup.POST("/logout", c.auth.Logout)
		authGroup.GET("/profile", c.auth.Profile)

		challenge := authGroup.Group("/challenge")
		{
			challenge.POST("/query",
				middleware.UserRateLimiter(store, "query", cfg.RateLimit.QueriesPerMinute, time.Minute, "Too many queries. Please slow down."),
				c.challenge.ExecuteQuery)
			challenge.GET("/hints",
				middleware.UserRateLimiter(store, "hint", cfg.RateLimit.HintsPerMinute, time.Minute, "Too many requests. Please slow down."),
				c.challenge.GetHints)
			challenge.POST("/hints/unlock",
				middleware.UserRateLimiter(store, "hint", cfg.RateLimit.HintsPerMinute, time.Minute, "Too many requests. Please slow down."),
				c.challenge.UnlockHint)
			challenge.POST("/start", c.challenge.Start)
			challenge.GET("/status", c.challenge.Status)
			challenge.POST("/submit-flag", c.challenge.SubmitFlag)
		}
	}

	// 3. 管理员路由
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg, a.services.auth), middleware.AdminMiddleware())
	{
		admin.GET("/stats", c.admin.Stats)
		admin.GET("/users", c.admin.ListUsers)
		admin.GET("/users/:id", c.admin.GetUser)
		admin.GET("/queries", c.admin.ListQueries)
		admin.GET("/settings", c.admin.GetSettings)
		admin.POST("/settings/:key", c.admin.UpdateSetting)
		admin.GET("/flag", c.admin.GetFlag)
		admin.PUT("/flag", c.admin.UpdateFlag)
	}
}
