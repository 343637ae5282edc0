// @title SQL 注入靶场后端 API
// @version 1.0
// @description 刻意留洞的 SQL 注入训练靶场后端服务。
// @host localhost:5000
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"log"
	"sql_range_backend/internal/app"
	"sql_range_backend/internal/config"
	"sql_range_backend/pkg/configwatcher"
	"sql_range_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 配置文件热更新
	go configwatcher.WatchConfig("configs/config.yaml", application.ReloadConfig)

	application.Run()
}
