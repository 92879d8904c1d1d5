package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/service"
	"github.com/krunal16-c/saskhack/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTeam 导出团队看板
// GET /api/v1/admin/export/team?team_id=xxx
func (h *ExportHandler) ExportTeam(c *gin.Context) {
	var req dto.ExportTeamRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 33001, "team_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportTeam(c.Request.Context(), req.TeamID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 21001, "团队不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 33002, "生成 Excel 文件失败")
	default:
		response.InternalError(c)
	}
}
