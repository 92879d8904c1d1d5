package risk

import (
	"sort"
	"time"
)

// NoIncidentSentinel 无事故记录时 days_since_last_incident 的取值
const NoIncidentSentinel = 999

// Submission 单日提交快照（聚合只读）
type Submission struct {
	ID                  string
	Date                time.Time // 自然日，UTC 零点
	ShiftDurationHours  float64
	FatigueLevel        int
	PPEItemsRequired    int
	PPEItemsUsed        int
	PPEComplianceRate   float64
	HazardHours         HazardExposure
	TotalHazardHours    float64
	Symptoms            []string
	IncidentReported    bool
	IncidentDescription string
	Notes               string
	RuleBasedScore      int
	RiskScore           int
	SubmittedAt         time.Time
}

// CivilDate 取 t 在 loc 下的日历日，返回该日 UTC 零点
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOf 将已存储的日期值规范为 UTC 零点
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayDiff 返回 a − b 的天数（均按日历日）
func DayDiff(a, b time.Time) int {
	return int(DateOf(a).Sub(DateOf(b)).Hours() / 24)
}

// History 某员工的提交历史与参考日
type History struct {
	ref  time.Time
	subs []Submission // 按日期降序
}

// NewHistory 以参考日 ref 构造历史视图，内部复制并按日期降序排列
func NewHistory(ref time.Time, subs []Submission) *History {
	sorted := make([]Submission, len(subs))
	copy(sorted, subs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return &History{ref: DateOf(ref), subs: sorted}
}

// Ref 参考日
func (h *History) Ref() time.Time { return h.ref }

// Len 快照内提交总数
func (h *History) Len() int { return len(h.subs) }

// All 按日期降序返回全部提交
func (h *History) All() []Submission { return h.subs }

// Window 返回 0 ≤ (ref − date) ≤ n 天的提交，按日期降序
func (h *History) Window(n int) []Submission {
	out := make([]Submission, 0, len(h.subs))
	for _, s := range h.subs {
		d := DayDiff(h.ref, s.Date)
		if d >= 0 && d <= n {
			out = append(out, s)
		}
	}
	return out
}

// past 参考日及之前的提交
func (h *History) past() []Submission {
	for i, s := range h.subs {
		if DayDiff(h.ref, s.Date) >= 0 {
			return h.subs[i:]
		}
	}
	return nil
}

// Latest 参考日及之前最近的一条提交
func (h *History) Latest() (Submission, bool) {
	p := h.past()
	if len(p) == 0 {
		return Submission{}, false
	}
	return p[0], true
}

// SubmittedOn 参考日当天是否已有提交
func (h *History) SubmittedOn() bool {
	latest, ok := h.Latest()
	return ok && DayDiff(h.ref, latest.Date) == 0
}

// AvgRisk 窗口内平均风险分，窗口为空时返回 fallback
func (h *History) AvgRisk(n int, fallback float64) float64 {
	w := h.Window(n)
	if len(w) == 0 {
		return fallback
	}
	var sum float64
	for _, s := range w {
		sum += float64(s.RiskScore)
	}
	return sum / float64(len(w))
}

// MaxRisk 窗口内最高风险分，窗口为空时返回 fallback
func (h *History) MaxRisk(n int, fallback int) int {
	w := h.Window(n)
	if len(w) == 0 {
		return fallback
	}
	highest := w[0].RiskScore
	for _, s := range w[1:] {
		if s.RiskScore > highest {
			highest = s.RiskScore
		}
	}
	return highest
}

// TotalHazardHours 窗口内危害暴露小时合计
func (h *History) TotalHazardHours(n int) float64 {
	var total float64
	for _, s := range h.Window(n) {
		total += s.TotalHazardHours
	}
	return total
}

// AvgPPECompliance 窗口内平均 PPE 合规率，窗口为空时返回 fallback
func (h *History) AvgPPECompliance(n int, fallback float64) float64 {
	w := h.Window(n)
	if len(w) == 0 {
		return fallback
	}
	var sum float64
	for _, s := range w {
		sum += s.PPEComplianceRate
	}
	return sum / float64(len(w))
}

// IncidentCount 窗口内上报事故的提交数
func (h *History) IncidentCount(n int) int {
	count := 0
	for _, s := range h.Window(n) {
		if s.IncidentReported {
			count++
		}
	}
	return count
}

// Incidents 窗口内上报事故的提交，按日期降序
func (h *History) Incidents(n int) []Submission {
	var out []Submission
	for _, s := range h.Window(n) {
		if s.IncidentReported {
			out = append(out, s)
		}
	}
	return out
}

// DaysSinceLastIncident 距最近一次事故的天数，无事故返回 NoIncidentSentinel
func (h *History) DaysSinceLastIncident() int {
	for _, s := range h.past() {
		if s.IncidentReported {
			return DayDiff(h.ref, s.Date)
		}
	}
	return NoIncidentSentinel
}

// ConsecutiveDaysWorked 从参考日当天起向前数连续有提交的天数，遇到缺口即停止
// 参考日本身没有提交时结果为 0
func (h *History) ConsecutiveDaysWorked() int {
	days := make(map[int]struct{}, len(h.subs))
	for _, s := range h.past() {
		days[DayDiff(h.ref, s.Date)] = struct{}{}
	}
	streak := 0
	for {
		if _, ok := days[streak]; !ok {
			return streak
		}
		streak++
	}
}

// ConsecutiveSafeDays 从最近一条提交向前数 riskScore ≤ 30 的条数
// 只有超过阈值的提交会中断计数，日期缺口不中断
func (h *History) ConsecutiveSafeDays() int {
	count := 0
	for _, s := range h.past() {
		if !IsSafe(s.RiskScore) {
			break
		}
		count++
	}
	return count
}
