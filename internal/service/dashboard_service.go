package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/model"
	"github.com/krunal16-c/saskhack/internal/repository"
	"github.com/krunal16-c/saskhack/internal/risk"
)

const (
	// workerDetailDays 员工详情时间序列天数
	workerDetailDays = 30
	// workerContextDays 对话助手上下文天数
	workerContextDays = 30
)

// 员工详情可选指标
var workerDetailMetrics = []dto.MetricDescriptor{
	{Key: "risk_score", Label: "Risk Score", Color: "#ef4444"},
	{Key: "fatigue_level", Label: "Fatigue Level", Color: "#f97316"},
	{Key: "ppe_compliance", Label: "PPE Compliance %", Color: "#22c55e"},
	{Key: "hazard_hours", Label: "Hazard Exposure (hrs)", Color: "#8b5cf6"},
	{Key: "shift_duration", Label: "Shift Duration (hrs)", Color: "#3b82f6"},
}

// DashboardService 看板业务接口
type DashboardService interface {
	// Worker 员工本人的个人看板
	Worker(ctx context.Context, externalID string) (*dto.WorkerDashboardResponse, error)
	// Team 团队看板；teamID 为空时返回空看板
	Team(ctx context.Context, teamID string) (*dto.TeamDashboardResponse, error)
	WorkerDetail(ctx context.Context, userID string) (*dto.WorkerDetailResponse, error)
	WorkerContext(ctx context.Context, userID string) (*dto.WorkerContextResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	clock  clock
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, clk clock, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, clock: clk, logger: logger}
}

// ────────────────────── Worker ──────────────────────

func (s *dashboardService) Worker(ctx context.Context, externalID string) (*dto.WorkerDashboardResponse, error) {
	user, err := resolveUser(ctx, s.repo, externalID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	subs, err := s.repo.Submission.ListByUser(ctx, user.UserID, today.AddDate(0, 0, -risk.Window90d), 0)
	if err != nil {
		s.logger.Error("查询员工提交失败", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}

	d := risk.BuildWorkerDashboard(today, s.clock.now(), toRiskSubmissions(subs))

	recent := make([]dto.RecentFormResponse, len(d.RecentForms))
	for i, f := range d.RecentForms {
		recent[i] = dto.RecentFormResponse{
			ID:          f.ID,
			Date:        f.Date.Format(time.DateOnly),
			SubmittedAt: f.SubmittedAt.Format(time.RFC3339),
			RiskScore:   f.RiskScore,
		}
	}
	alerts := make([]dto.AlertResponse, len(d.Alerts))
	for i, a := range d.Alerts {
		alerts[i] = dto.AlertResponse{
			ID:        a.ID,
			Title:     a.Title,
			Message:   a.Message,
			Severity:  a.Severity,
			CreatedAt: a.CreatedAt.Format(time.RFC3339),
		}
	}

	return &dto.WorkerDashboardResponse{
		LatestRisk: dto.LatestRiskResponse{
			TotalScore: d.LatestRisk.Score,
			RiskLevel:  string(d.LatestRisk.Level),
			Date:       d.LatestRisk.Date.Format(time.DateOnly),
		},
		RecentForms:         recent,
		Alerts:              alerts,
		TodayFormSubmitted:  d.TodaySubmitted,
		ConsecutiveSafeDays: d.ConsecutiveSafeDays,
		Stats: dto.WorkerStatsResponse{
			FormsThisWeek:    d.Stats.FormsThisWeek,
			AvgRisk7d:        d.Stats.AvgRisk7d,
			IncidentsLast90d: d.Stats.IncidentsLast90d,
		},
	}, nil
}

// ────────────────────── Team ──────────────────────

func (s *dashboardService) Team(ctx context.Context, teamID string) (*dto.TeamDashboardResponse, error) {
	if teamID == "" {
		resp := toTeamDashboardResponse(nil, risk.EmptyCohortDashboard())
		return &resp, nil
	}

	team, err := s.repo.Team.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("查询团队失败", zap.String("team_id", teamID), zap.Error(err))
		return nil, err
	}

	users := make([]*model.User, 0, len(team.Members))
	ids := make([]string, 0, len(team.Members))
	for _, m := range team.Members {
		if m.User == nil {
			continue
		}
		users = append(users, m.User)
		ids = append(ids, m.UserID)
	}

	// 一次取出全队 30 天快照，后续聚合都复用它
	today := s.clock.Today()
	subs, err := s.repo.Submission.ListByUsers(ctx, ids, today.AddDate(0, 0, -risk.Window30d))
	if err != nil {
		s.logger.Error("查询团队提交失败", zap.String("team_id", teamID), zap.Error(err))
		return nil, err
	}

	byUser := make(map[string][]risk.Submission, len(ids))
	for i := range subs {
		byUser[subs[i].UserID] = append(byUser[subs[i].UserID], toRiskSubmission(&subs[i]))
	}

	members := make([]risk.Member, len(users))
	for i, u := range users {
		members[i] = toRiskMember(u, byUser[u.UserID])
	}

	resp := toTeamDashboardResponse(&team.TeamID, risk.BuildCohortDashboard(today, members))
	return &resp, nil
}

// ────────────────────── WorkerDetail / WorkerContext ──────────────────────

func (s *dashboardService) WorkerDetail(ctx context.Context, userID string) (*dto.WorkerDetailResponse, error) {
	user, subs, err := s.userWithHistory(ctx, userID, workerDetailDays)
	if err != nil {
		return nil, err
	}

	points := risk.TimeSeries(s.clock.Today(), subs, workerDetailDays)
	series := make([]dto.SeriesPointResponse, len(points))
	for i, p := range points {
		series[i] = dto.SeriesPointResponse{
			Date:          p.Date.Format(time.DateOnly),
			Label:         p.Date.Format("Jan 2"),
			RiskScore:     p.RiskScore,
			FatigueLevel:  p.FatigueLevel,
			PPECompliance: p.PPECompliance,
			HazardHours:   p.HazardHours,
			ShiftDuration: p.ShiftDuration,
		}
	}

	return &dto.WorkerDetailResponse{
		User:             toUserResponse(user),
		TimeSeries:       series,
		AvailableMetrics: workerDetailMetrics,
	}, nil
}

func (s *dashboardService) WorkerContext(ctx context.Context, userID string) (*dto.WorkerContextResponse, error) {
	user, subs, err := s.userWithHistory(ctx, userID, workerContextDays)
	if err != nil {
		return nil, err
	}

	text := risk.BuildWorkerContext(risk.ContextProfile{
		Name:            user.DisplayName(),
		Email:           user.Email,
		Age:             user.Age,
		Gender:          derefString(user.Gender),
		YearsExperience: user.YearsExperience,
		JobTitle:        derefString(user.JobTitle),
		Department:      derefString(user.Department),
	}, subs)

	return &dto.WorkerContextResponse{
		UserID:      user.UserID,
		Days:        workerContextDays,
		Submissions: len(subs),
		Context:     text,
	}, nil
}

// userWithHistory 读取员工及其近 days 天提交
func (s *dashboardService) userWithHistory(ctx context.Context, userID string, days int) (*model.User, []risk.Submission, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, nil, err
	}

	list, err := s.repo.Submission.ListByUser(ctx, userID, s.clock.Today().AddDate(0, 0, -days), 0)
	if err != nil {
		s.logger.Error("查询员工提交失败", zap.String("user_id", userID), zap.Error(err))
		return nil, nil, err
	}
	return user, toRiskSubmissions(list), nil
}

// ── 转换 ──

func toTeamDashboardResponse(teamID *string, d risk.CohortDashboard) dto.TeamDashboardResponse {
	m := d.Metrics
	resp := dto.TeamDashboardResponse{
		TeamID: teamID,
		Metrics: dto.MetricsResponse{
			TotalUsers:         m.TotalUsers,
			ActiveUsers:        m.ActiveUsers,
			TotalFormsToday:    m.TotalFormsToday,
			TotalFormsThisWeek: m.TotalFormsThisWeek,
			AvgRiskToday:       m.AvgRiskToday,
			AvgRiskWeek:        m.AvgRiskWeek,
			HighRiskUsers:      m.HighRiskUsers,
			IncidentsThisMonth: m.IncidentsThisMonth,
			ComplianceRate:     m.ComplianceRate,
		},
		Users: make([]dto.WorkerRowResponse, len(d.Workers)),
	}

	for i, w := range d.Workers {
		forms := make([]dto.FormSummaryResponse, len(w.RecentForms))
		for j, f := range w.RecentForms {
			forms[j] = toFormSummary(f)
		}
		resp.Users[i] = dto.WorkerRowResponse{
			ID:                w.Member.UserID,
			ExternalID:        w.Member.ExternalID,
			Name:              w.Member.Name,
			Email:             w.Member.Email,
			Age:               w.Member.Age,
			Gender:            w.Member.Gender,
			YearsExperience:   w.Member.YearsExperience,
			JobTitle:          w.Member.JobTitle,
			Department:        w.Member.Department,
			FormsThisWeek:     w.FormsThisWeek,
			AvgRisk7d:         w.AvgRisk7d,
			LatestRiskScore:   w.LatestRiskScore,
			AvgPPECompliance:  w.AvgPPECompliance,
			HasSubmittedToday: w.HasSubmittedToday,
			TotalForms:        w.TotalForms,
			IncidentsReported: w.IncidentsReported,
			RiskLevel:         string(w.RiskLevel),
			FormSubmissions:   forms,
		}
	}

	c := d.Charts
	charts := dto.ChartsResponse{
		DailyRiskTrend:      make([]dto.TrendPointResponse, len(c.DailyRiskTrend)),
		RiskDistribution:    dto.DistributionResponse(c.RiskDistribution),
		HazardData:          make([]dto.HazardCountResponse, len(c.HazardData)),
		PPEComplianceTrend:  make([]dto.CompliancePointResponse, len(c.PPEComplianceTrend)),
		FatigueDistribution: make([]dto.FatigueBucketResponse, len(c.FatigueDistribution)),
	}
	for i, p := range c.DailyRiskTrend {
		charts.DailyRiskTrend[i] = dto.TrendPointResponse{
			Date:      p.Date.Format(time.DateOnly),
			Label:     p.Date.Format("Mon, Jan 2"),
			AvgRisk:   p.AvgRisk,
			FormCount: p.FormCount,
		}
	}
	for i, h := range c.HazardData {
		charts.HazardData[i] = dto.HazardCountResponse(h)
	}
	for i, p := range c.PPEComplianceTrend {
		charts.PPEComplianceTrend[i] = dto.CompliancePointResponse{
			Date:       p.Date.Format(time.DateOnly),
			Label:      p.Date.Format("Mon"),
			Compliance: p.Compliance,
		}
	}
	for i, b := range c.FatigueDistribution {
		charts.FatigueDistribution[i] = dto.FatigueBucketResponse(b)
	}
	resp.Charts = charts

	return resp
}

func toFormSummary(f risk.Submission) dto.FormSummaryResponse {
	hazards := f.HazardHours.ToMap()
	symptoms := f.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}
	return dto.FormSummaryResponse{
		ID:                       f.ID,
		Date:                     f.Date.Format(time.DateOnly),
		ShiftDuration:            f.ShiftDurationHours,
		FatigueLevel:             f.FatigueLevel,
		RiskScore:                f.RiskScore,
		PPEComplianceRate:        int(f.PPEComplianceRate*100 + 0.5),
		PPEItemsUsed:             f.PPEItemsUsed,
		PPEItemsRequired:         f.PPEItemsRequired,
		TotalHazardExposureHours: f.TotalHazardHours,
		HazardExposures:          hazards,
		Symptoms:                 symptoms,
		IncidentReported:         f.IncidentReported,
		IncidentDescription:      f.IncidentDescription,
	}
}
