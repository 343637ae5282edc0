package controller

import (
	"sql_range_backend/internal/service"
	"sql_range_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ChallengeController 闯关接口：查询沙箱、提示阶梯、状态机
type ChallengeController struct {
	ChallengeService *service.ChallengeService
	StatusService    *service.ChallengeStatusService
	HintService      *service.HintService
}

func NewChallengeController(
	challengeService *service.ChallengeService,
	statusService *service.ChallengeStatusService,
	hintService *service.HintService,
) *ChallengeController {
	return &ChallengeController{
		ChallengeService: challengeService,
		StatusService:    statusService,
		HintService:      hintService,
	}
}

// QueryRequest SQL 查询请求
type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// ExecuteQuery godoc
// @Summary 在用户沙箱库里执行 SQL
// @Description 校验失败、引擎报错、超时统一按 400 返回可读文案
// @Tags 闯关
// @Accept  json
// @Produce  json
// @Param   body body QueryRequest true "SQL 查询"
// @Success 200 {object} util.Response{data=service.QueryResponse}
// @Failure 400 {object} util.Response "查询被拒或执行失败"
// @Router /api/challenge/query [post]
func (c *ChallengeController) ExecuteQuery(ctx *gin.Context) {
	var req QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.ChallengeService.ExecuteQuery(ctx.Request.Context(), claims.UserID, req.Query)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, result)
}

// GetHints godoc
// @Summary 提示列表
// @Description 未解锁的提示不返回内容
// @Tags 闯关
// @Produce  json
// @Success 200 {object} util.Response{data=object}
// @Router /api/challenge/hints [get]
func (c *ChallengeController) GetHints(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	hints, err := c.HintService.GetHints(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"hints": hints})
}

// UnlockHintRequest 解锁提示请求
type UnlockHintRequest struct {
	HintID int `json:"hintId" binding:"required"`
}

// UnlockHint godoc
// @Summary 解锁提示
// @Description 时间门未到时返回剩余秒数
// @Tags 闯关
// @Accept  json
// @Produce  json
// @Param   body body UnlockHintRequest true "提示编号"
// @Success 200 {object} util.Response{data=object} "返回解锁后的完整列表"
// @Failure 400 {object} util.Response "编号无效、已解锁或时间未到"
// @Router /api/challenge/hints/unlock [post]
func (c *ChallengeController) UnlockHint(ctx *gin.Context) {
	var req UnlockHintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	hints, err := c.HintService.UnlockHint(claims.UserID, req.HintID)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"hints": hints})
}

// Start godoc
// @Summary 开始闯关计时
// @Description 重复调用幂等，不会重置计时
// @Tags 闯关
// @Produce  json
// @Success 200 {object} util.Response{data=service.StartResult}
// @Router /api/challenge/start [post]
func (c *ChallengeController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	result, err := c.StatusService.Start(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Status godoc
// @Summary 当前闯关状态
// @Tags 闯关
// @Produce  json
// @Success 200 {object} util.Response{data=service.StatusSnapshot}
// @Router /api/challenge/status [get]
func (c *ChallengeController) Status(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	status, err := c.StatusService.GetStatus(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// SubmitFlagRequest 旗帜提交请求
type SubmitFlagRequest struct {
	Flag string `json:"flag" binding:"required"`
}

// SubmitFlag godoc
// @Summary 提交旗帜
// @Description 诱饵旗和错误旗都按 200 返回结构化结果，success=false
// @Tags 闯关
// @Accept  json
// @Produce  json
// @Param   body body SubmitFlagRequest true "旗帜文本"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Router /api/challenge/submit-flag [post]
func (c *ChallengeController) SubmitFlag(ctx *gin.Context) {
	var req SubmitFlagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.StatusService.SubmitFlag(claims.UserID, req.Flag)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
