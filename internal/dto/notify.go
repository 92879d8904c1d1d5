package dto

// ── 通知模块 DTO ──

// NotifyRequest 批量发送通知
type NotifyRequest struct {
	Type    string   `json:"type"     binding:"required,oneof=no_form high_risk"`
	UserIDs []string `json:"user_ids" binding:"required,min=1,max=200,dive,uuid"`
	Force   bool     `json:"force"`
}

// NotifyResponse 发送结果
type NotifyResponse struct {
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}

// ── 导出 ──

// ExportTeamRequest 团队看板导出参数
type ExportTeamRequest struct {
	TeamID string `form:"team_id" binding:"required,uuid"`
}
