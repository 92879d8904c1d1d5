package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/krunal16-c/saskhack/config"
	"github.com/krunal16-c/saskhack/internal/repository"
	"github.com/krunal16-c/saskhack/internal/risk"
)

// Service 所有 Service 的聚合入口
type Service struct {
	User       UserService
	Submission SubmissionService
	Dashboard  DashboardService
	Team       TeamService
	Notify     NotifyService
	Export     ExportService
}

// Options 外部依赖，均可为 nil
// Scorer 为 nil 时只使用规则评分；Publisher 为 nil 时不发布事件；
// Guard 为 nil 时不做通知去重；Now 为 nil 时使用 time.Now
type Options struct {
	Scorer    RiskScorer
	Publisher EventPublisher
	Mailer    Mailer
	Guard     NotifyGuard
	Now       func() time.Time
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	opts Options,
	logger *zap.Logger,
) *Service {
	clk := newClock(opts.Now, cfg.Policy.Location())
	dashboard := NewDashboardService(repo, clk, logger)
	return &Service{
		User:       NewUserService(repo, logger),
		Submission: NewSubmissionService(repo, opts.Scorer, opts.Publisher, clk, cfg.Policy.HistoryDays, logger),
		Dashboard:  dashboard,
		Team:       NewTeamService(repo, logger),
		Notify:     NewNotifyService(repo, opts.Mailer, opts.Guard, clk, cfg.Policy.NotifyDedupWindow, logger),
		Export:     NewExportService(repo, dashboard, clk, logger),
	}
}

// clock 当前时刻与策略时区
type clock struct {
	now func() time.Time
	loc *time.Location
}

func newClock(now func() time.Time, loc *time.Location) clock {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return clock{now: now, loc: loc}
}

// Today 策略时区下的今天（UTC 零点表示）
func (c clock) Today() time.Time {
	return risk.CivilDate(c.now(), c.loc)
}
