package service

import (
	"time"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/model"
	"github.com/krunal16-c/saskhack/internal/risk"
)

// ── 模型 → 评分快照 ──

func toRiskSubmission(m *model.DailySubmission) risk.Submission {
	return risk.Submission{
		ID:                  m.SubmissionID,
		Date:                risk.DateOf(m.Date),
		ShiftDurationHours:  m.ShiftDurationHours,
		FatigueLevel:        m.FatigueLevel,
		PPEItemsRequired:    m.PPEItemsRequired,
		PPEItemsUsed:        m.PPEItemsUsed,
		PPEComplianceRate:   m.PPEComplianceRate,
		HazardHours:         risk.ExposureFromMap(m.HazardExposures.Data()),
		TotalHazardHours:    m.TotalHazardExposureHours,
		Symptoms:            m.Symptoms.Data(),
		IncidentReported:    m.IncidentReported,
		IncidentDescription: derefString(m.IncidentDescription),
		Notes:               derefString(m.Notes),
		RuleBasedScore:      m.RuleBasedScore,
		RiskScore:           m.RiskScore,
		SubmittedAt:         m.SubmittedAt,
	}
}

func toRiskSubmissions(list []model.DailySubmission) []risk.Submission {
	subs := make([]risk.Submission, len(list))
	for i := range list {
		subs[i] = toRiskSubmission(&list[i])
	}
	return subs
}

func toRiskProfile(u *model.User) risk.Profile {
	return risk.Profile{
		Age:             u.Age,
		YearsExperience: u.YearsExperience,
		Gender:          derefString(u.Gender),
	}
}

func toRiskMember(u *model.User, subs []risk.Submission) risk.Member {
	return risk.Member{
		UserID:          u.UserID,
		ExternalID:      u.ExternalID,
		Name:            u.DisplayName(),
		Email:           u.Email,
		Age:             u.Age,
		Gender:          derefString(u.Gender),
		YearsExperience: u.YearsExperience,
		JobTitle:        derefString(u.JobTitle),
		Department:      derefString(u.Department),
		Submissions:     subs,
	}
}

// ── 模型 → DTO ──

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:              u.UserID,
		ExternalID:      u.ExternalID,
		Email:           u.Email,
		Name:            u.Name,
		ImageURL:        u.ImageURL,
		Role:            u.Role,
		Age:             u.Age,
		Gender:          u.Gender,
		YearsExperience: u.YearsExperience,
		JobType:         u.JobType,
		JobTitle:        u.JobTitle,
		Department:      u.Department,
		Version:         u.Version,
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
	}
}

func toSubmissionResponse(m *model.DailySubmission) dto.SubmissionResponse {
	hazards := m.HazardExposures.Data()
	if hazards == nil {
		hazards = map[string]float64{}
	}
	symptoms := m.Symptoms.Data()
	if symptoms == nil {
		symptoms = []string{}
	}
	return dto.SubmissionResponse{
		ID:                       m.SubmissionID,
		Date:                     m.Date.Format(time.DateOnly),
		ShiftDurationHours:       m.ShiftDurationHours,
		FatigueLevel:             m.FatigueLevel,
		PPEItemsRequired:         m.PPEItemsRequired,
		PPEItemsUsed:             m.PPEItemsUsed,
		PPEComplianceRate:        m.PPEComplianceRate,
		HazardExposures:          hazards,
		TotalHazardExposureHours: m.TotalHazardExposureHours,
		Symptoms:                 symptoms,
		IncidentReported:         m.IncidentReported,
		IncidentDescription:      m.IncidentDescription,
		Notes:                    m.Notes,
		RuleBasedScore:           m.RuleBasedScore,
		RiskScore:                m.RiskScore,
		RiskLevel:                string(risk.Classify(m.RiskScore)),
		ScoreSource:              m.ScoreSource,
		SubmittedAt:              m.SubmittedAt.Format(time.RFC3339),
	}
}

// ── 工具函数 ──

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
