package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/service"
	"github.com/krunal16-c/saskhack/pkg/response"
)

// DashboardHandler 看板 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Worker 员工个人看板
// GET /api/v1/dashboard
func (h *DashboardHandler) Worker(c *gin.Context) {
	externalID, ok := MustGetExternalID(c)
	if !ok {
		return
	}

	result, err := h.dashboardSvc.Worker(c.Request.Context(), externalID)
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}

	response.OK(c, result)
}

// Team 团队看板，未指定团队时返回空看板
// GET /api/v1/admin/dashboard?team_id=xxx
func (h *DashboardHandler) Team(c *gin.Context) {
	var req dto.TeamDashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 31001, "team_id 格式无效")
		return
	}

	result, err := h.dashboardSvc.Team(c.Request.Context(), req.TeamID)
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}

	response.OK(c, result)
}

// WorkerDetail 员工详情与 30 天时间序列
// GET /api/v1/admin/users/:id
func (h *DashboardHandler) WorkerDetail(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 31001, "用户ID不能为空")
		return
	}

	result, err := h.dashboardSvc.WorkerDetail(c.Request.Context(), id)
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}

	response.OK(c, result)
}

// WorkerContext 对话助手使用的员工上下文文本
// GET /api/v1/admin/users/:id/context
func (h *DashboardHandler) WorkerContext(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 31001, "用户ID不能为空")
		return
	}

	result, err := h.dashboardSvc.WorkerContext(c.Request.Context(), id)
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *DashboardHandler) handleDashboardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "用户不存在")
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 21001, "团队不存在")
	default:
		response.InternalError(c)
	}
}
