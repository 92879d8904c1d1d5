package model

import (
	"time"

	"gorm.io/datatypes"
)

// 分数来源
const (
	ScoreSourceModel = "model"
	ScoreSourceRule  = "rule"
)

// DailySubmission 每日安全自评表，对应 daily_submissions
// (user_id, date) 唯一，重复提交覆盖当日记录
type DailySubmission struct {
	SubmissionID             string                                  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	UserID                   string                                  `gorm:"type:uuid;not null"                             json:"user_id"`
	Date                     time.Time                               `gorm:"type:date;not null"                             json:"date"`
	ShiftDurationHours       float64                                 `gorm:"type:numeric(5,2);not null"                     json:"shift_duration_hours"`
	FatigueLevel             int                                     `gorm:"not null"                                       json:"fatigue_level"`
	PPEItemsRequired         int                                     `gorm:"column:ppe_items_required;not null;default:0"   json:"ppe_items_required"`
	PPEItemsUsed             int                                     `gorm:"column:ppe_items_used;not null;default:0"       json:"ppe_items_used"`
	PPEComplianceRate        float64                                 `gorm:"column:ppe_compliance_rate;not null"            json:"ppe_compliance_rate"`
	HazardExposures          datatypes.JSONType[map[string]float64] `gorm:"type:jsonb;not null"                            json:"hazard_exposures"`
	TotalHazardExposureHours float64                                 `gorm:"not null;default:0"                             json:"total_hazard_exposure_hours"`
	Symptoms                 datatypes.JSONType[[]string]            `gorm:"type:jsonb;not null"                            json:"symptoms"`
	IncidentReported         bool                                    `gorm:"not null;default:false"                         json:"incident_reported"`
	IncidentDescription      *string                                 `gorm:"type:text"                                      json:"incident_description,omitempty"`
	Notes                    *string                                 `gorm:"type:text"                                      json:"notes,omitempty"`
	RuleBasedScore           int                                     `gorm:"not null"                                       json:"rule_based_score"`
	RiskScore                int                                     `gorm:"not null"                                       json:"risk_score"`
	ScoreSource              string                                  `gorm:"type:varchar(10);not null;default:'rule'"       json:"score_source"`
	SubmittedAt              time.Time                               `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`
	BaseModel
}

// TableName 指定表名
func (DailySubmission) TableName() string { return "daily_submissions" }
