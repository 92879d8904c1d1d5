package risk

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 特征计算窗口（天）
const (
	Window7d  = 7
	Window30d = 30
	Window90d = 90
)

// 画像缺失时的默认值
const (
	DefaultAge             = 30
	DefaultYearsExperience = 0
)

// Gender 性别
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// 性别编码：外部评分模型的输入约定，全局唯一
const (
	GenderCodeMale   = 0
	GenderCodeFemale = 1
	GenderCodeOther  = 2
)

// ParseGender 规范化性别字符串，无法识别时返回 false
func ParseGender(s string) (Gender, bool) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	case GenderOther:
		return GenderOther, true
	}
	return "", false
}

// EncodeGender male=0，female=1，其余（含未填）=2
func EncodeGender(s string) int {
	g, _ := ParseGender(s)
	switch g {
	case GenderMale:
		return GenderCodeMale
	case GenderFemale:
		return GenderCodeFemale
	default:
		return GenderCodeOther
	}
}

// Profile 员工画像中参与特征计算的字段
type Profile struct {
	Age             *int
	YearsExperience *int
	Gender          string
}

// FormInput 当日表单
type FormInput struct {
	ShiftDurationHours float64
	FatigueLevel       int
	PPEItemsRequired   int
	PPEItemsUsed       int
	HazardHours        HazardExposure
	Symptoms           []string
	IncidentReported   bool
}

// PPEComplianceRate 当日 PPE 合规率
func (f FormInput) PPEComplianceRate() float64 {
	return PPEComplianceRate(f.PPEItemsRequired, f.PPEItemsUsed)
}

// ScoreInput 转换为规则评分输入
func (f FormInput) ScoreInput() ScoreInput {
	return ScoreInput{
		FatigueLevel:      f.FatigueLevel,
		PPEComplianceRate: f.PPEComplianceRate(),
		HazardHours:       f.HazardHours,
		IncidentReported:  f.IncidentReported,
		SymptomCount:      len(f.Symptoms),
	}
}

// FeatureVector 发送给外部评分服务的特征向量，字段名为对外契约
type FeatureVector struct {
	ShiftDuration            float64 `json:"shift_duration"`
	FatigueLevel             int     `json:"fatigue_level"`
	PPEComplianceRate        float64 `json:"ppe_compliance_rate"`
	TotalHazardExposureHours float64 `json:"total_hazard_exposure_hours"`
	Age                      int     `json:"age"`
	YearsExperience          int     `json:"years_experience"`
	GenderEncoded            int     `json:"gender_encoded"`
	DayOfWeek                int     `json:"day_of_week"`
	Month                    int     `json:"month"`
	ConsecutiveDaysWorked    int     `json:"consecutive_days_worked"`
	DailyRiskScore           int     `json:"daily_risk_score"`
	AvgRisk7d                float64 `json:"avg_risk_7d"`
	AvgRisk30d               float64 `json:"avg_risk_30d"`
	MaxRisk7d                int     `json:"max_risk_7d"`
	TotalHazardHours7d       float64 `json:"total_hazard_hours_7d"`
	TotalHazardHours30d      float64 `json:"total_hazard_hours_30d"`
	AvgPPE7d                 float64 `json:"avg_ppe_7d"`
	IncidentsLast90d         int     `json:"incidents_last_90d"`
	DaysSinceLastIncident    int     `json:"days_since_last_incident"`
}

// BuildFeatures 由当日表单、画像与既往提交构造特征向量，同时返回规则基线分
//
// prior 中与 today 同日的记录会被忽略（重复提交将覆盖它），
// 因此同一天同样的表单重复提交得到相同的特征。
func BuildFeatures(today time.Time, form FormInput, profile Profile, prior []Submission) (FeatureVector, int) {
	today = DateOf(today)
	baseline := RuleBasedScore(form.ScoreInput())
	todayRate := form.PPEComplianceRate()

	history := NewHistory(today, excludeDate(prior, today))

	// 当日表单本身算作一个工作日：1 + 截至昨天的连续天数
	streak := 1 + NewHistory(today.AddDate(0, 0, -1), history.All()).ConsecutiveDaysWorked()

	age := DefaultAge
	if profile.Age != nil && *profile.Age > 0 {
		age = *profile.Age
	}
	experience := DefaultYearsExperience
	if profile.YearsExperience != nil && *profile.YearsExperience >= 0 {
		experience = *profile.YearsExperience
	}

	fv := FeatureVector{
		ShiftDuration:            round2(form.ShiftDurationHours),
		FatigueLevel:             form.FatigueLevel,
		PPEComplianceRate:        round2(todayRate),
		TotalHazardExposureHours: round2(form.HazardHours.TotalHours()),
		Age:                      age,
		YearsExperience:          experience,
		GenderEncoded:            EncodeGender(profile.Gender),
		DayOfWeek:                int(today.Weekday()),
		Month:                    int(today.Month()),
		ConsecutiveDaysWorked:    streak,
		DailyRiskScore:           baseline,
		AvgRisk7d:                round2(history.AvgRisk(Window7d, float64(baseline))),
		AvgRisk30d:               round2(history.AvgRisk(Window30d, float64(baseline))),
		MaxRisk7d:                history.MaxRisk(Window7d, baseline),
		TotalHazardHours7d:       round2(history.TotalHazardHours(Window7d)),
		TotalHazardHours30d:      round2(history.TotalHazardHours(Window30d)),
		AvgPPE7d:                 round2(history.AvgPPECompliance(Window7d, todayRate)),
		IncidentsLast90d:         history.IncidentCount(Window90d),
		DaysSinceLastIncident:    history.DaysSinceLastIncident(),
	}
	return fv, baseline
}

func excludeDate(subs []Submission, day time.Time) []Submission {
	out := make([]Submission, 0, len(subs))
	for _, s := range subs {
		if DayDiff(day, s.Date) != 0 {
			out = append(out, s)
		}
	}
	return out
}

// round2 四舍五入到两位小数（十进制语义，避免二进制浮点误差）
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
