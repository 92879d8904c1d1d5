package risk

import "math"

const (
	ppeMaxReduction    = 18.0
	fatiguePointsPerLv = 5.0
	symptomPoints      = 4.0
	incidentPoints     = 20.0
	hazardHoursUnit    = 8.0

	MinScore = 0
	MaxScore = 100
)

// ScoreInput 规则评分输入
type ScoreInput struct {
	FatigueLevel      int
	PPEComplianceRate float64
	HazardHours       HazardExposure
	IncidentReported  bool
	SymptomCount      int
}

// RuleBasedScore 规则评分，结果为 [0,100] 内的整数
//
// 顺序固定：危害累计 → 减去 PPE 抵扣并截断到 ≥0 → 疲劳 → 症状 → 事故。
// PPE 抵扣只作用于危害部分。
func RuleBasedScore(in ScoreInput) int {
	var hazard float64
	for c, hours := range in.HazardHours {
		hazard += BaseWeight(c) * (hours / hazardHoursUnit)
	}

	total := math.Max(0, hazard-in.PPEComplianceRate*ppeMaxReduction)

	total += float64(in.FatigueLevel-1) * fatiguePointsPerLv
	total += float64(in.SymptomCount) * symptomPoints
	if in.IncidentReported {
		total += incidentPoints
	}

	return ClampScore(int(math.Round(total)))
}

// ClampScore 截断到 [0,100]
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// PPEComplianceRate 计算 PPE 合规率
// required 为 0 时视为完全合规；used 超过 required 时不截断，按原始比值计
func PPEComplianceRate(required, used int) float64 {
	if required <= 0 {
		return 1
	}
	return float64(used) / float64(required)
}
