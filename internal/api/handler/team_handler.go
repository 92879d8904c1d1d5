package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/service"
	"github.com/krunal16-c/saskhack/pkg/response"
)

// TeamHandler 团队模块 HTTP 处理器
type TeamHandler struct {
	teamSvc service.TeamService
}

// NewTeamHandler 创建 TeamHandler
func NewTeamHandler(teamSvc service.TeamService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc}
}

// ListTeams 团队列表
// GET /api/v1/admin/teams
func (h *TeamHandler) ListTeams(c *gin.Context) {
	list, err := h.teamSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateTeam 创建团队（可带初始成员）
// POST /api/v1/admin/teams
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 21000, "参数校验失败")
		return
	}

	callerID, ok := MustGetExternalID(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.Created(c, team)
}

// GetTeam 团队详情
// GET /api/v1/admin/teams/:id
func (h *TeamHandler) GetTeam(c *gin.Context) {
	id := c.Param("id")

	team, err := h.teamSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// UpdateTeam 更新团队
// PUT /api/v1/admin/teams/:id
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 21000, "参数校验失败")
		return
	}

	callerID, ok := MustGetExternalID(c)
	if !ok {
		return
	}

	team, err := h.teamSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, team)
}

// DeleteTeam 删除团队
// DELETE /api/v1/admin/teams/:id
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	id := c.Param("id")

	if err := h.teamSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, nil)
}

// AddMember 添加团队成员（幂等）
// POST /api/v1/admin/teams/:id/members
func (h *TeamHandler) AddMember(c *gin.Context) {
	id := c.Param("id")

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 21000, "参数校验失败")
		return
	}

	result, err := h.teamSvc.AddMember(c.Request.Context(), id, &req)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, result)
}

// RemoveMember 移除团队成员
// DELETE /api/v1/admin/teams/:id/members/:user_id
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	if err := h.teamSvc.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("user_id")); err != nil {
		h.handleTeamError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *TeamHandler) handleTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 21001, "团队不存在")
	case errors.Is(err, service.ErrTeamMemberNotFound):
		response.NotFound(c, 21002, "该用户不是团队成员")
	case errors.Is(err, service.ErrTeamMemberInvalid):
		response.BadRequest(c, 21003, "成员列表包含不存在的用户")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "用户不存在")
	default:
		response.InternalError(c)
	}
}
