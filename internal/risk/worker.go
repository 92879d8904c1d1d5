package risk

import (
	"fmt"
	"time"
)

// 员工个人看板提醒阈值
const (
	elevatedAlertAvg   = 40.0
	criticalAlertAvg   = 60.0
	highFatigueLevel   = 7
	maxIncidentAlerts  = 3
	workerRecentWindow = 7
)

// Alert 员工看板提醒
type Alert struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// LatestRisk 最近一次风险
type LatestRisk struct {
	Score int
	Level Level
	Date  time.Time
}

// WorkerStats 员工看板统计
type WorkerStats struct {
	FormsThisWeek    int `json:"forms_this_week"`
	AvgRisk7d        int `json:"avg_risk_7d"`
	IncidentsLast90d int `json:"incidents_last_90d"`
}

// WorkerDashboard 员工个人看板
type WorkerDashboard struct {
	LatestRisk          LatestRisk
	RecentForms         []Submission
	Alerts              []Alert
	TodaySubmitted      bool
	ConsecutiveSafeDays int
	Stats               WorkerStats
}

// BuildWorkerDashboard 由员工近 90 日提交计算个人看板
// now 用于提醒的创建时间
func BuildWorkerDashboard(today, now time.Time, subs []Submission) WorkerDashboard {
	h := NewHistory(today, subs)
	recent := h.Window(Window7d)
	if len(recent) > workerRecentWindow {
		recent = recent[:workerRecentWindow]
	}
	avg := meanRisk(recent)

	latest := LatestRisk{Score: 0, Level: LevelLow, Date: h.Ref()}
	if len(recent) > 0 {
		latest = LatestRisk{Score: recent[0].RiskScore, Level: Classify(recent[0].RiskScore), Date: recent[0].Date}
	}

	incidents := h.Incidents(Window90d)

	return WorkerDashboard{
		LatestRisk:          latest,
		RecentForms:         recent,
		Alerts:              buildAlerts(now, recent, incidents, avg),
		TodaySubmitted:      h.SubmittedOn(),
		ConsecutiveSafeDays: h.ConsecutiveSafeDays(),
		Stats: WorkerStats{
			FormsThisWeek:    len(recent),
			AvgRisk7d:        roundInt(avg),
			IncidentsLast90d: len(incidents),
		},
	}
}

func buildAlerts(now time.Time, recent, incidents []Submission, avg float64) []Alert {
	alerts := make([]Alert, 0, maxIncidentAlerts+2)

	for i, s := range incidents {
		if i == maxIncidentAlerts {
			break
		}
		msg := s.IncidentDescription
		if msg == "" {
			msg = "An incident was reported on this day."
		}
		alerts = append(alerts, Alert{
			ID:        "incident-" + s.ID,
			Title:     "Incident Reported",
			Message:   msg,
			Severity:  string(LevelHigh),
			CreatedAt: s.SubmittedAt,
		})
	}

	if avg > elevatedAlertAvg {
		severity := string(LevelMedium)
		if avg > criticalAlertAvg {
			severity = string(LevelCritical)
		}
		alerts = append(alerts, Alert{
			ID:        "elevated-risk",
			Title:     "Elevated Risk Level",
			Message:   fmt.Sprintf("Your average risk score over the past 7 days is %d. Consider reviewing your safety practices.", roundInt(avg)),
			Severity:  severity,
			CreatedAt: now,
		})
	}

	fatigued := 0
	for _, s := range recent {
		if s.FatigueLevel >= highFatigueLevel {
			fatigued++
		}
	}
	if fatigued > 0 {
		alerts = append(alerts, Alert{
			ID:        "high-fatigue",
			Title:     "High Fatigue Detected",
			Message:   fmt.Sprintf("You reported high fatigue levels on %d day(s) this week. Please ensure adequate rest.", fatigued),
			Severity:  string(LevelMedium),
			CreatedAt: now,
		})
	}

	return alerts
}

// SeriesPoint 员工详情时间序列点
type SeriesPoint struct {
	Date          time.Time
	RiskScore     int
	FatigueLevel  int
	PPECompliance int
	HazardHours   float64
	ShiftDuration float64
}

// TimeSeries 近 n 日时间序列，按日期升序
func TimeSeries(today time.Time, subs []Submission, n int) []SeriesPoint {
	w := NewHistory(today, subs).Window(n)
	points := make([]SeriesPoint, len(w))
	for i, s := range w {
		points[len(w)-1-i] = SeriesPoint{
			Date:          s.Date,
			RiskScore:     s.RiskScore,
			FatigueLevel:  s.FatigueLevel,
			PPECompliance: percent(s.PPEComplianceRate),
			HazardHours:   round2(s.TotalHazardHours),
			ShiftDuration: s.ShiftDurationHours,
		}
	}
	return points
}
