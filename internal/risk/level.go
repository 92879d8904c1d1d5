package risk

// Level 风险等级，由分数实时推导，不落库
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// 规范阈值（看板、通知、统计均使用）
const (
	LowMax    = 30
	MediumMax = 60
	HighMax   = 80
)

// 仪表盘展示阈值，仅用于提交表单的实时仪表
const gaugeHighMax = 85

// Classify 规范分级：≤30 low，≤60 medium，≤80 high，其余 critical
func Classify(score int) Level {
	return classify(score, HighMax)
}

// GaugeLevel 仪表盘展示分级，high/critical 边界为 85
func GaugeLevel(score int) Level {
	return classify(score, gaugeHighMax)
}

func classify(score, highMax int) Level {
	switch {
	case score <= LowMax:
		return LevelLow
	case score <= MediumMax:
		return LevelMedium
	case score <= highMax:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// Elevated high 或 critical
func (l Level) Elevated() bool {
	return l == LevelHigh || l == LevelCritical
}

// IsSafe 分数是否计入连续安全天数
func IsSafe(score int) bool {
	return score <= LowMax
}
