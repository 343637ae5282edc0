package controller

import (
	"sql_range_backend/internal/service"
	"sql_range_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ScoreboardController struct {
	ScoreboardService *service.ScoreboardService
	Hub               *service.ScoreboardHub
}

func NewScoreboardController(scoreboardService *service.ScoreboardService, hub *service.ScoreboardHub) *ScoreboardController {
	return &ScoreboardController{
		ScoreboardService: scoreboardService,
		Hub:               hub,
	}
}

// GetScoreboard godoc
// @Summary 记分板
// @Description 已完成者按名次排序，进行中的展示实时用时
// @Tags 记分板
// @Produce  json
// @Success 200 {object} util.Response{data=object}
// @Router /api/scoreboard [get]
func (c *ScoreboardController) GetScoreboard(ctx *gin.Context) {
	entries, err := c.ScoreboardService.GetScoreboard()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"scoreboard": entries})
}

// HandleWS godoc
// @Summary 记分板实时推送
// @Description 升级为 WebSocket，每 10 秒全量推送，有人通关立即加推
// @Tags 记分板
// @Router /api/scoreboard/ws [get]
func (c *ScoreboardController) HandleWS(ctx *gin.Context) {
	service.ServeScoreboardWs(c.Hub, ctx.Writer, ctx.Request)
}
