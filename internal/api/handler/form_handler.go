package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/service"
	"github.com/krunal16-c/saskhack/pkg/response"
)

// FormHandler 每日自评表单 HTTP 处理器
type FormHandler struct {
	submissionSvc service.SubmissionService
}

// NewFormHandler 创建 FormHandler
func NewFormHandler(submissionSvc service.SubmissionService) *FormHandler {
	return &FormHandler{submissionSvc: submissionSvc}
}

// Submit 提交当日自评并返回风险评分
// POST /api/v1/forms
func (h *FormHandler) Submit(c *gin.Context) {
	externalID, ok := MustGetExternalID(c)
	if !ok {
		return
	}

	var req dto.SubmitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 30001, "参数校验失败", err.Error())
		return
	}

	result, err := h.submissionSvc.Submit(c.Request.Context(), externalID, &req)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	response.OK(c, result)
}

// List 本人历史提交（按日期降序）
// GET /api/v1/forms?days=90
func (h *FormHandler) List(c *gin.Context) {
	externalID, ok := MustGetExternalID(c)
	if !ok {
		return
	}

	var req dto.FormListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 30001, "参数校验失败")
		return
	}

	list, err := h.submissionSvc.List(c.Request.Context(), externalID, req.Days)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// PreviewFeatures 预览草稿表单的特征向量，不落库
// POST /api/v1/forms/features
func (h *FormHandler) PreviewFeatures(c *gin.Context) {
	externalID, ok := MustGetExternalID(c)
	if !ok {
		return
	}

	var req dto.SubmitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 30001, "参数校验失败", err.Error())
		return
	}

	result, err := h.submissionSvc.PreviewFeatures(c.Request.Context(), externalID, &req)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *FormHandler) handleFormError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, "用户未同步，请先调用 /users/sync")
	case errors.Is(err, service.ErrSubmissionInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 30001, "表单数据无效", err.Error())
	case errors.Is(err, service.ErrSubmissionFutureDate):
		response.BadRequest(c, 30002, "不能提交未来日期的表单")
	case errors.Is(err, service.ErrSubmissionTooOld):
		response.BadRequest(c, 30003, "只能补交最近 7 天内的表单")
	default:
		response.InternalError(c)
	}
}
