package dto

import "github.com/krunal16-c/saskhack/internal/risk"

// ── 每日自评 DTO ──

// SubmitFormRequest 提交每日自评
// 必填数值字段使用指针，以区分"未填"与 0
type SubmitFormRequest struct {
	Date                string             `json:"date"                 binding:"omitempty,datetime=2006-01-02"`
	ShiftDurationHours  *float64           `json:"shift_duration_hours" binding:"required,gt=0,lte=24"`
	FatigueLevel        *int               `json:"fatigue_level"        binding:"required,min=1,max=10"`
	PPEItemsRequired    *int               `json:"ppe_items_required"   binding:"required,min=0,max=50"`
	PPEItemsUsed        *int               `json:"ppe_items_used"       binding:"required,min=0,max=50"`
	HazardExposures     map[string]float64 `json:"hazard_exposures"     binding:"omitempty,max=20,dive,keys,min=1,max=50,endkeys,gte=0,lte=24"`
	Symptoms            []string           `json:"symptoms"             binding:"omitempty,max=20,dive,min=1,max=100"`
	IncidentReported    *bool              `json:"incident_reported"    binding:"required"`
	IncidentDescription string             `json:"incident_description" binding:"max=2000"`
	Notes               string             `json:"notes"                binding:"max=2000"`
}

// FormListRequest 历史提交查询参数
type FormListRequest struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}

// SubmissionResponse 单条提交
type SubmissionResponse struct {
	ID                       string             `json:"id"`
	Date                     string             `json:"date"`
	ShiftDurationHours       float64            `json:"shift_duration_hours"`
	FatigueLevel             int                `json:"fatigue_level"`
	PPEItemsRequired         int                `json:"ppe_items_required"`
	PPEItemsUsed             int                `json:"ppe_items_used"`
	PPEComplianceRate        float64            `json:"ppe_compliance_rate"`
	HazardExposures          map[string]float64 `json:"hazard_exposures"`
	TotalHazardExposureHours float64            `json:"total_hazard_exposure_hours"`
	Symptoms                 []string           `json:"symptoms"`
	IncidentReported         bool               `json:"incident_reported"`
	IncidentDescription      *string            `json:"incident_description,omitempty"`
	Notes                    *string            `json:"notes,omitempty"`
	RuleBasedScore           int                `json:"rule_based_score"`
	RiskScore                int                `json:"risk_score"`
	RiskLevel                string             `json:"risk_level"`
	ScoreSource              string             `json:"score_source"`
	SubmittedAt              string             `json:"submitted_at"`
}

// SubmitFormResponse 提交结果
type SubmitFormResponse struct {
	Submission  SubmissionResponse `json:"submission"`
	ScoreSource string             `json:"score_source"` // model | rule
	RiskLevel   string             `json:"risk_level"`
	GaugeLevel  string             `json:"gauge_level"` // 仪表盘展示分级（85 阈值）
}

// FeaturePreviewResponse 特征向量预览
type FeaturePreviewResponse struct {
	Features       risk.FeatureVector `json:"features"`
	RuleBasedScore int                `json:"rule_based_score"`
	RiskLevel      string             `json:"risk_level"`
}
