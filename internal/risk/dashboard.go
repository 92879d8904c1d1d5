package risk

import (
	"math"
	"sort"
	"time"
)

// 看板策略阈值
const (
	// HighRiskWorkerAvg 7 日均分超过该值的员工计为高风险员工（独立于分级阈值）
	HighRiskWorkerAvg = 50.0
	trendDays         = 7
	workerRecentLimit = 10
)

// Member 团队成员及其近 30 日提交快照
type Member struct {
	UserID          string
	ExternalID      string
	Name            string
	Email           string
	Age             *int
	Gender          string
	YearsExperience *int
	JobTitle        string
	Department      string
	Submissions     []Submission
}

// CohortMetrics 团队汇总指标
type CohortMetrics struct {
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

// TrendPoint 日风险趋势点
type TrendPoint struct {
	Date      time.Time
	AvgRisk   int
	FormCount int
}

// Distribution 分级分布
type Distribution struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// Add 按规范分级计数
func (d *Distribution) Add(score int) {
	switch Classify(score) {
	case LevelLow:
		d.Low++
	case LevelMedium:
		d.Medium++
	case LevelHigh:
		d.High++
	default:
		d.Critical++
	}
}

// HazardCount 危害类别出现次数
type HazardCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CompliancePoint 日 PPE 合规率（百分比）
type CompliancePoint struct {
	Date       time.Time
	Compliance int
}

// FatigueBucket 疲劳等级直方图
type FatigueBucket struct {
	Level int `json:"level"`
	Count int `json:"count"`
}

// Charts 看板图表数据
type Charts struct {
	DailyRiskTrend      []TrendPoint
	RiskDistribution    Distribution
	HazardData          []HazardCount
	PPEComplianceTrend  []CompliancePoint
	FatigueDistribution []FatigueBucket
}

// WorkerSummary 团队看板中的员工行
type WorkerSummary struct {
	Member            Member
	FormsThisWeek     int
	AvgRisk7d         int
	LatestRiskScore   int
	AvgPPECompliance  int
	HasSubmittedToday bool
	TotalForms        int
	IncidentsReported int
	RiskLevel         Level
	RecentForms       []Submission
}

// CohortDashboard 团队看板
type CohortDashboard struct {
	Metrics CohortMetrics
	Workers []WorkerSummary
	Charts  Charts
}

// EmptyCohortDashboard 未选择团队时返回的空看板
func EmptyCohortDashboard() CohortDashboard {
	return CohortDashboard{
		Workers: []WorkerSummary{},
		Charts: Charts{
			DailyRiskTrend:      []TrendPoint{},
			HazardData:          []HazardCount{},
			PPEComplianceTrend:  []CompliancePoint{},
			FatigueDistribution: []FatigueBucket{},
		},
	}
}

// BuildCohortDashboard 由团队成员的提交快照计算看板
func BuildCohortDashboard(today time.Time, members []Member) CohortDashboard {
	today = DateOf(today)

	var all []Submission
	for _, m := range members {
		all = append(all, m.Submissions...)
	}
	cohort := NewHistory(today, all)
	forms30d := cohort.Window(Window30d)
	forms7d := cohort.Window(Window7d)
	formsToday := cohort.Window(0)

	metrics := CohortMetrics{
		TotalUsers:         len(members),
		TotalFormsToday:    len(formsToday),
		TotalFormsThisWeek: len(forms7d),
		AvgRiskToday:       roundInt(meanRisk(formsToday)),
		AvgRiskWeek:        roundInt(meanRisk(forms7d)),
		IncidentsThisMonth: countIncidents(forms30d),
		ComplianceRate:     percent(meanPPE(forms7d)),
	}

	workers := make([]WorkerSummary, 0, len(members))
	for _, m := range members {
		w := summarizeWorker(today, m)
		if w.FormsThisWeek > 0 {
			metrics.ActiveUsers++
			if meanRisk(NewHistory(today, m.Submissions).Window(Window7d)) > HighRiskWorkerAvg {
				metrics.HighRiskUsers++
			}
		}
		workers = append(workers, w)
	}
	sort.SliceStable(workers, func(i, j int) bool {
		return workers[i].LatestRiskScore > workers[j].LatestRiskScore
	})

	return CohortDashboard{
		Metrics: metrics,
		Workers: workers,
		Charts: Charts{
			DailyRiskTrend:      dailyRiskTrend(today, forms7d),
			RiskDistribution:    distribution(forms30d),
			HazardData:          hazardFrequency(forms30d),
			PPEComplianceTrend:  complianceTrend(today, forms7d),
			FatigueDistribution: fatigueHistogram(forms7d),
		},
	}
}

func summarizeWorker(today time.Time, m Member) WorkerSummary {
	h := NewHistory(today, m.Submissions)
	recent := h.Window(Window7d)
	snapshot := h.Window(Window30d)

	w := WorkerSummary{
		Member:            m,
		FormsThisWeek:     len(recent),
		AvgRisk7d:         roundInt(meanRisk(recent)),
		AvgPPECompliance:  percent(meanPPE(recent)),
		HasSubmittedToday: h.SubmittedOn(),
		TotalForms:        len(snapshot),
		IncidentsReported: countIncidents(snapshot),
	}
	if latest, ok := h.Latest(); ok {
		w.LatestRiskScore = latest.RiskScore
	}
	w.RiskLevel = Classify(w.LatestRiskScore)

	limit := workerRecentLimit
	if len(snapshot) < limit {
		limit = len(snapshot)
	}
	w.RecentForms = snapshot[:limit]
	return w
}

func dailyRiskTrend(today time.Time, forms []Submission) []TrendPoint {
	byDay := groupByDay(today, forms)
	points := make([]TrendPoint, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		day := byDay[i]
		points = append(points, TrendPoint{
			Date:      today.AddDate(0, 0, -i),
			AvgRisk:   roundInt(meanRisk(day)),
			FormCount: len(day),
		})
	}
	return points
}

func complianceTrend(today time.Time, forms []Submission) []CompliancePoint {
	byDay := groupByDay(today, forms)
	points := make([]CompliancePoint, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		points = append(points, CompliancePoint{
			Date:       today.AddDate(0, 0, -i),
			Compliance: percent(meanPPE(byDay[i])),
		})
	}
	return points
}

func distribution(forms []Submission) Distribution {
	var d Distribution
	for _, f := range forms {
		d.Add(f.RiskScore)
	}
	return d
}

// hazardFrequency 统计提到各类别的提交数（不是小时数），按次数降序
func hazardFrequency(forms []Submission) []HazardCount {
	counts := make(map[HazardCategory]int)
	for _, f := range forms {
		for c := range f.HazardHours {
			counts[c]++
		}
	}
	out := make([]HazardCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, HazardCount{Name: string(c), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func fatigueHistogram(forms []Submission) []FatigueBucket {
	buckets := make([]FatigueBucket, 10)
	for i := range buckets {
		buckets[i].Level = i + 1
	}
	for _, f := range forms {
		if f.FatigueLevel >= 1 && f.FatigueLevel <= 10 {
			buckets[f.FatigueLevel-1].Count++
		}
	}
	return buckets
}

// groupByDay 按距 today 的天数分组
func groupByDay(today time.Time, forms []Submission) map[int][]Submission {
	out := make(map[int][]Submission)
	for _, f := range forms {
		d := DayDiff(today, f.Date)
		out[d] = append(out[d], f)
	}
	return out
}

func meanRisk(forms []Submission) float64 {
	if len(forms) == 0 {
		return 0
	}
	var sum float64
	for _, f := range forms {
		sum += float64(f.RiskScore)
	}
	return sum / float64(len(forms))
}

func meanPPE(forms []Submission) float64 {
	if len(forms) == 0 {
		return 0
	}
	var sum float64
	for _, f := range forms {
		sum += f.PPEComplianceRate
	}
	return sum / float64(len(forms))
}

func countIncidents(forms []Submission) int {
	n := 0
	for _, f := range forms {
		if f.IncidentReported {
			n++
		}
	}
	return n
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func percent(rate float64) int {
	return roundInt(rate * 100)
}
