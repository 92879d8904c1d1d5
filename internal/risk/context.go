package risk

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ContextProfile 对话助手上下文中的员工画像
type ContextProfile struct {
	Name            string
	Email           string
	Age             *int
	Gender          string
	YearsExperience *int
	JobTitle        string
	Department      string
}

const notSet = "Not set"

// BuildWorkerContext 将画像与提交历史渲染为可读文本，提交按日期降序排列
func BuildWorkerContext(p ContextProfile, subs []Submission) string {
	var b strings.Builder

	b.WriteString("## Worker profile\n")
	fmt.Fprintf(&b, "Name: %s\n", orNotSet(p.Name))
	fmt.Fprintf(&b, "Email: %s\n", p.Email)
	fmt.Fprintf(&b, "Age: %s\n", intOrNotSet(p.Age))
	fmt.Fprintf(&b, "Gender: %s\n", orNotSet(p.Gender))
	fmt.Fprintf(&b, "Job Title: %s\n", orNotSet(p.JobTitle))
	fmt.Fprintf(&b, "Department: %s\n", orNotSet(p.Department))
	fmt.Fprintf(&b, "Years of Experience: %s\n", intOrNotSet(p.YearsExperience))

	b.WriteString("\n## Daily form submissions (most recent first)\n")

	h := NewHistory(maxDate(subs), subs)
	if h.Len() == 0 {
		b.WriteString("No form submissions yet.")
		return b.String()
	}

	for i, s := range h.All() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		writeSubmission(&b, i+1, s)
	}
	return b.String()
}

func writeSubmission(b *strings.Builder, n int, s Submission) {
	hazards := "none"
	if len(s.HazardHours) > 0 {
		if raw, err := json.Marshal(s.HazardHours.ToMap()); err == nil {
			hazards = string(raw)
		}
	}
	symptoms := "none"
	if len(s.Symptoms) > 0 {
		symptoms = strings.Join(s.Symptoms, ", ")
	}

	fmt.Fprintf(b, "--- Form %d (%s) ---\n", n, s.Date.Format("1/2/2006"))
	fmt.Fprintf(b, "Shift duration: %s hours\n", formatNumber(s.ShiftDurationHours))
	fmt.Fprintf(b, "Fatigue level: %d/10\n", s.FatigueLevel)
	fmt.Fprintf(b, "Risk score: %d (%s)\n", s.RiskScore, Classify(s.RiskScore))
	fmt.Fprintf(b, "PPE compliance: %d/%d (%d%%)\n", s.PPEItemsUsed, s.PPEItemsRequired, percent(s.PPEComplianceRate))
	fmt.Fprintf(b, "Total hazard exposure hours: %s\n", formatNumber(s.TotalHazardHours))
	fmt.Fprintf(b, "Hazard exposures: %s\n", hazards)
	fmt.Fprintf(b, "Symptoms: %s\n", symptoms)
	fmt.Fprintf(b, "Incident reported: %t", s.IncidentReported)
	if s.IncidentDescription != "" {
		fmt.Fprintf(b, "\nIncident description: %s", s.IncidentDescription)
	}
	if s.Notes != "" {
		fmt.Fprintf(b, "\nNotes: %s", s.Notes)
	}
}

func orNotSet(s string) string {
	if s == "" {
		return notSet
	}
	return s
}

func intOrNotSet(v *int) string {
	if v == nil {
		return notSet
	}
	return strconv.Itoa(*v)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}

// maxDate 上下文渲染不按窗口过滤，参考日取最新提交日
func maxDate(subs []Submission) (latest time.Time) {
	for _, s := range subs {
		if s.Date.After(latest) {
			latest = s.Date
		}
	}
	return latest
}
