package dto

// ── 员工看板 ──

// LatestRiskResponse 最近风险
type LatestRiskResponse struct {
	TotalScore int    `json:"total_score"`
	RiskLevel  string `json:"risk_level"`
	Date       string `json:"date"`
}

// RecentFormResponse 近期提交摘要
type RecentFormResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	SubmittedAt string `json:"submitted_at"`
	RiskScore   int    `json:"risk_score"`
}

// AlertResponse 看板提醒
type AlertResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// WorkerStatsResponse 员工统计
type WorkerStatsResponse struct {
	FormsThisWeek    int `json:"forms_this_week"`
	AvgRisk7d        int `json:"avg_risk_7d"`
	IncidentsLast90d int `json:"incidents_last_90d"`
}

// WorkerDashboardResponse 员工个人看板
type WorkerDashboardResponse struct {
	LatestRisk          LatestRiskResponse   `json:"latest_risk"`
	RecentForms         []RecentFormResponse `json:"recent_forms"`
	Alerts              []AlertResponse      `json:"alerts"`
	TodayFormSubmitted  bool                 `json:"today_form_submitted"`
	ConsecutiveSafeDays int                  `json:"consecutive_safe_days"`
	Stats               WorkerStatsResponse  `json:"stats"`
}

// ── 团队看板 ──

// TeamDashboardRequest 团队看板查询参数
type TeamDashboardRequest struct {
	TeamID string `form:"team_id" binding:"omitempty,uuid"`
}

// MetricsResponse 团队指标
type MetricsResponse struct {
	TotalUsers         int `json:"total_users"`
	ActiveUsers        int `json:"active_users"`
	TotalFormsToday    int `json:"total_forms_today"`
	TotalFormsThisWeek int `json:"total_forms_this_week"`
	AvgRiskToday       int `json:"avg_risk_today"`
	AvgRiskWeek        int `json:"avg_risk_week"`
	HighRiskUsers      int `json:"high_risk_users"`
	IncidentsThisMonth int `json:"incidents_this_month"`
	ComplianceRate     int `json:"compliance_rate"`
}

// FormSummaryResponse 团队看板中员工的提交摘要
type FormSummaryResponse struct {
	ID                       string             `json:"id"`
	Date                     string             `json:"date"`
	ShiftDuration            float64            `json:"shift_duration"`
	FatigueLevel             int                `json:"fatigue_level"`
	RiskScore                int                `json:"risk_score"`
	PPEComplianceRate        int                `json:"ppe_compliance_rate"` // 百分比
	PPEItemsUsed             int                `json:"ppe_items_used"`
	PPEItemsRequired         int                `json:"ppe_items_required"`
	TotalHazardExposureHours float64            `json:"total_hazard_exposure_hours"`
	HazardExposures          map[string]float64 `json:"hazard_exposures"`
	Symptoms                 []string           `json:"symptoms"`
	IncidentReported         bool               `json:"incident_reported"`
	IncidentDescription      string             `json:"incident_description,omitempty"`
}

// WorkerRowResponse 团队看板员工行
type WorkerRowResponse struct {
	ID                string                `json:"id"`
	ExternalID        string                `json:"external_id"`
	Name              string                `json:"name"`
	Email             string                `json:"email"`
	Age               *int                  `json:"age"`
	Gender            string                `json:"gender"`
	YearsExperience   *int                  `json:"years_experience"`
	JobTitle          string                `json:"job_title"`
	Department        string                `json:"department"`
	FormsThisWeek     int                   `json:"forms_this_week"`
	AvgRisk7d         int                   `json:"avg_risk_7d"`
	LatestRiskScore   int                   `json:"latest_risk_score"`
	AvgPPECompliance  int                   `json:"avg_ppe_compliance"`
	HasSubmittedToday bool                  `json:"has_submitted_today"`
	TotalForms        int                   `json:"total_forms"`
	IncidentsReported int                   `json:"incidents_reported"`
	RiskLevel         string                `json:"risk_level"`
	FormSubmissions   []FormSummaryResponse `json:"form_submissions"`
}

// TrendPointResponse 日风险趋势
type TrendPointResponse struct {
	Date      string `json:"date"`
	Label     string `json:"label"`
	AvgRisk   int    `json:"avg_risk"`
	FormCount int    `json:"form_count"`
}

// CompliancePointResponse 日 PPE 合规率
type CompliancePointResponse struct {
	Date       string `json:"date"`
	Label      string `json:"label"`
	Compliance int    `json:"compliance"`
}

// DistributionResponse 分级分布
type DistributionResponse struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// HazardCountResponse 危害出现次数
type HazardCountResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FatigueBucketResponse 疲劳直方图
type FatigueBucketResponse struct {
	Level int `json:"level"`
	Count int `json:"count"`
}

// ChartsResponse 图表数据
type ChartsResponse struct {
	DailyRiskTrend      []TrendPointResponse      `json:"daily_risk_trend"`
	RiskDistribution    DistributionResponse      `json:"risk_distribution"`
	HazardData          []HazardCountResponse     `json:"hazard_data"`
	PPEComplianceTrend  []CompliancePointResponse `json:"ppe_compliance_trend"`
	FatigueDistribution []FatigueBucketResponse   `json:"fatigue_distribution"`
}

// TeamDashboardResponse 团队看板
type TeamDashboardResponse struct {
	TeamID  *string             `json:"team_id"`
	Metrics MetricsResponse     `json:"metrics"`
	Users   []WorkerRowResponse `json:"users"`
	Charts  ChartsResponse      `json:"charts"`
}

// ── 员工详情 ──

// SeriesPointResponse 时间序列点
type SeriesPointResponse struct {
	Date          string  `json:"date"`
	Label         string  `json:"label"`
	RiskScore     int     `json:"risk_score"`
	FatigueLevel  int     `json:"fatigue_level"`
	PPECompliance int     `json:"ppe_compliance"`
	HazardHours   float64 `json:"hazard_hours"`
	ShiftDuration float64 `json:"shift_duration"`
}

// MetricDescriptor 可选指标
type MetricDescriptor struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// WorkerDetailResponse 员工详情
type WorkerDetailResponse struct {
	User             UserResponse          `json:"user"`
	TimeSeries       []SeriesPointResponse `json:"time_series"`
	AvailableMetrics []MetricDescriptor    `json:"available_metrics"`
}

// WorkerContextResponse 对话助手上下文
type WorkerContextResponse struct {
	UserID      string `json:"user_id"`
	Days        int    `json:"days"`
	Submissions int    `json:"submissions"`
	Context     string `json:"context"`
}
