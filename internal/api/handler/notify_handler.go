package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/service"
	"github.com/krunal16-c/saskhack/pkg/response"
)

// NotifyHandler 通知模块 HTTP 处理器
type NotifyHandler struct {
	notifySvc service.NotifyService
}

// NewNotifyHandler 创建 NotifyHandler
func NewNotifyHandler(notifySvc service.NotifyService) *NotifyHandler {
	return &NotifyHandler{notifySvc: notifySvc}
}

// Send 向选中员工批量发送通知邮件
// POST /api/v1/admin/notify
func (h *NotifyHandler) Send(c *gin.Context) {
	var req dto.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 32001, "参数校验失败", err.Error())
		return
	}

	result, err := h.notifySvc.Send(c.Request.Context(), &req)
	if err != nil {
		h.handleNotifyError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *NotifyHandler) handleNotifyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotifyInvalidType):
		response.BadRequest(c, 32001, "通知类型无效，可选 no_form 或 high_risk")
	case errors.Is(err, service.ErrNotifyNoRecipients):
		response.BadRequest(c, 32002, "请至少选择一名员工")
	case errors.Is(err, service.ErrMailerNotConfigured):
		response.Error(c, http.StatusServiceUnavailable, 32003, "邮件服务未配置")
	default:
		response.InternalError(c)
	}
}
