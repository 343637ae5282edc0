package controller

import (
	"errors"
	"sql_range_backend/internal/service"
	"sql_range_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	AdminService *service.AdminService
}

func NewAdminController(adminService *service.AdminService) *AdminController {
	return &AdminController{AdminService: adminService}
}

// Stats godoc
// @Summary 管理面板统计
// @Tags 管理
// @Produce  json
// @Success 200 {object} util.Response{data=service.DashboardStats}
// @Router /api/admin/stats [get]
func (c *AdminController) Stats(ctx *gin.Context) {
	stats, err := c.AdminService.GetStats()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// ListUsers godoc
// @Summary 用户列表
// @Tags 管理
// @Produce  json
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	users, err := c.AdminService.ListUsers()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"users": users})
}

// GetUser godoc
// @Summary 用户明细
// @Tags 管理
// @Produce  json
// @Param   id path int true "用户 ID"
// @Success 200 {object} util.Response{data=service.UserDetail}
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id} [get]
func (c *AdminController) GetUser(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "Invalid user id")
		return
	}

	detail, err := c.AdminService.GetUserDetail(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, detail)
}

// ListQueries godoc
// @Summary 全量查询流水（分页）
// @Tags 管理
// @Produce  json
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页条数" default(100)
// @Param   flagFound query bool false "只看命中旗帜的查询"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/queries [get]
func (c *AdminController) ListQueries(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	var flagFound *bool
	if raw, ok := ctx.GetQuery("flagFound"); ok {
		v := raw == "true"
		flagFound = &v
	}

	logs, total, err := c.AdminService.ListQueries(page, limit, flagFound)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: logs, Total: total, Page: page, Limit: limit})
}

// GetSettings godoc
// @Summary 后台开关配置
// @Tags 管理
// @Produce  json
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/settings [get]
func (c *AdminController) GetSettings(ctx *gin.Context) {
	settings, err := c.AdminService.GetSettings()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"settings": settings})
}

// UpdateSettingRequest 更新配置请求
type UpdateSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

// UpdateSetting godoc
// @Summary 更新单项配置
// @Tags 管理
// @Accept  json
// @Produce  json
// @Param   key path string true "配置键"
// @Param   body body UpdateSettingRequest true "新值"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "配置项不存在"
// @Router /api/admin/settings/{key} [post]
func (c *AdminController) UpdateSetting(ctx *gin.Context) {
	var req UpdateSettingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	key := ctx.Param("key")
	if err := c.AdminService.UpdateSetting(key, req.Value); err != nil {
		if errors.Is(err, util.ErrSettingNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{
		"message": "Setting updated successfully",
		"key":     key,
		"value":   req.Value,
	})
}

// GetFlag godoc
// @Summary 当前旗帜配置
// @Tags 管理
// @Produce  json
// @Success 200 {object} util.Response{data=model.ChallengeConfig}
// @Failure 404 {object} util.Response "旗帜配置缺失"
// @Router /api/admin/flag [get]
func (c *AdminController) GetFlag(ctx *gin.Context) {
	cfg, err := c.AdminService.GetFlagConfig()
	if err != nil {
		if errors.Is(err, util.ErrFlagConfigNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, cfg)
}

// UpdateFlagRequest 换旗请求
type UpdateFlagRequest struct {
	Flag   string `json:"flag" binding:"required"`
	Points *int   `json:"points"`
}

// UpdateFlag godoc
// @Summary 更新旗帜配置
// @Description 新旗帜立即生效，必须是 FLAG{...} 形态
// @Tags 管理
// @Accept  json
// @Produce  json
// @Param   body body UpdateFlagRequest true "新旗帜"
// @Success 200 {object} util.Response{data=model.ChallengeConfig}
// @Failure 400 {object} util.Response "格式不合法"
// @Router /api/admin/flag [put]
func (c *AdminController) UpdateFlag(ctx *gin.Context) {
	var req UpdateFlagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	cfg, err := c.AdminService.UpdateFlagConfig(req.Flag, req.Points, claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrInvalidFlagFormat) || errors.Is(err, util.ErrInvalidFlagPoints) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, cfg)
}
