package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/model"
	"github.com/krunal16-c/saskhack/internal/repository"
	"github.com/krunal16-c/saskhack/internal/risk"
)

// ── 自评提交模块业务错误 ──

var (
	ErrSubmissionInvalid    = errors.New("表单数据无效")
	ErrSubmissionFutureDate = errors.New("不能提交未来日期的表单")
	ErrSubmissionTooOld     = errors.New("只能补交最近 7 天内的表单")
)

const (
	// maxBackfillDays 允许补交的最大天数
	maxBackfillDays = 7
	// defaultListDays 历史列表默认天数
	defaultListDays = 90
)

// SubmissionService 每日自评业务接口
type SubmissionService interface {
	// Submit 校验表单 → 构造特征 → 评分（外部失败回退规则分）→ 按 (员工, 日期) 覆盖写入 → 发布事件
	Submit(ctx context.Context, externalID string, req *dto.SubmitFormRequest) (*dto.SubmitFormResponse, error)
	List(ctx context.Context, externalID string, days int) ([]dto.SubmissionResponse, error)
	// PreviewFeatures 只计算特征向量，不调用评分服务也不落库
	PreviewFeatures(ctx context.Context, externalID string, req *dto.SubmitFormRequest) (*dto.FeaturePreviewResponse, error)
}

type submissionService struct {
	repo        *repository.Repository
	scorer      RiskScorer
	publisher   EventPublisher
	clock       clock
	historyDays int
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(
	repo *repository.Repository,
	scorer RiskScorer,
	publisher EventPublisher,
	clk clock,
	historyDays int,
	logger *zap.Logger,
) SubmissionService {
	if historyDays < risk.Window90d {
		historyDays = risk.Window90d
	}
	// 与 gin 绑定共用同一套 binding 规则，服务被直接调用时同样生效
	v := validator.New()
	v.SetTagName("binding")

	return &submissionService{
		repo:        repo,
		scorer:      scorer,
		publisher:   publisher,
		clock:       clk,
		historyDays: historyDays,
		validate:    v,
		logger:      logger,
	}
}

// ────────────────────── Submit ──────────────────────

func (s *submissionService) Submit(ctx context.Context, externalID string, req *dto.SubmitFormRequest) (*dto.SubmitFormResponse, error) {
	user, err := resolveUser(ctx, s.repo, externalID)
	if err != nil {
		return nil, err
	}

	form, err := s.formInput(req)
	if err != nil {
		return nil, err
	}

	day, err := s.resolveDate(req.Date)
	if err != nil {
		return nil, err
	}

	fv, baseline, err := s.buildFeatures(ctx, user, day, form)
	if err != nil {
		return nil, err
	}

	score, source := s.score(ctx, user.UserID, fv, baseline)
	now := s.clock.now()

	sub := &model.DailySubmission{
		UserID:                   user.UserID,
		Date:                     day,
		ShiftDurationHours:       form.ShiftDurationHours,
		FatigueLevel:             form.FatigueLevel,
		PPEItemsRequired:         form.PPEItemsRequired,
		PPEItemsUsed:             form.PPEItemsUsed,
		PPEComplianceRate:        form.PPEComplianceRate(),
		HazardExposures:          datatypes.NewJSONType(form.HazardHours.ToMap()),
		TotalHazardExposureHours: form.HazardHours.TotalHours(),
		Symptoms:                 datatypes.NewJSONType(form.Symptoms),
		IncidentReported:         form.IncidentReported,
		IncidentDescription:      optionalString(strings.TrimSpace(req.IncidentDescription)),
		Notes:                    optionalString(strings.TrimSpace(req.Notes)),
		RuleBasedScore:           baseline,
		RiskScore:                score,
		ScoreSource:              source,
		SubmittedAt:              now,
	}
	sub.CreatedBy = &user.UserID
	sub.UpdatedBy = &user.UserID

	if err := s.repo.Submission.Upsert(ctx, sub); err != nil {
		s.logger.Error("保存每日自评失败", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}

	// 重新读取以拿到覆盖写入后的 ID 与首次提交时间
	stored, err := s.repo.Submission.GetByUserAndDate(ctx, user.UserID, day)
	if err != nil {
		s.logger.Error("读取每日自评失败", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}

	publishRiskEvents(ctx, s.publisher, stored, now, s.logger)

	level := risk.Classify(stored.RiskScore)
	s.logger.Info("每日自评已提交",
		zap.String("user_id", user.UserID),
		zap.String("date", day.Format(time.DateOnly)),
		zap.Int("risk_score", stored.RiskScore),
		zap.Int("rule_based_score", baseline),
		zap.String("score_source", source),
		zap.String("risk_level", string(level)),
	)

	return &dto.SubmitFormResponse{
		Submission:  toSubmissionResponse(stored),
		ScoreSource: source,
		RiskLevel:   string(level),
		GaugeLevel:  string(risk.GaugeLevel(stored.RiskScore)),
	}, nil
}

// ────────────────────── List ──────────────────────

func (s *submissionService) List(ctx context.Context, externalID string, days int) ([]dto.SubmissionResponse, error) {
	user, err := resolveUser(ctx, s.repo, externalID)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultListDays
	}

	since := s.clock.Today().AddDate(0, 0, -days)
	subs, err := s.repo.Submission.ListByUser(ctx, user.UserID, since, 0)
	if err != nil {
		s.logger.Error("查询提交历史失败", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}

	list := make([]dto.SubmissionResponse, len(subs))
	for i := range subs {
		list[i] = toSubmissionResponse(&subs[i])
	}
	return list, nil
}

// ────────────────────── PreviewFeatures ──────────────────────

func (s *submissionService) PreviewFeatures(ctx context.Context, externalID string, req *dto.SubmitFormRequest) (*dto.FeaturePreviewResponse, error) {
	user, err := resolveUser(ctx, s.repo, externalID)
	if err != nil {
		return nil, err
	}
	form, err := s.formInput(req)
	if err != nil {
		return nil, err
	}
	day, err := s.resolveDate(req.Date)
	if err != nil {
		return nil, err
	}

	fv, baseline, err := s.buildFeatures(ctx, user, day, form)
	if err != nil {
		return nil, err
	}

	return &dto.FeaturePreviewResponse{
		Features:       fv,
		RuleBasedScore: baseline,
		RiskLevel:      string(risk.Classify(baseline)),
	}, nil
}

// ── 内部方法 ──

// formInput 校验请求并转换为评分输入；缺失字段是校验错误，不做默认填充
func (s *submissionService) formInput(req *dto.SubmitFormRequest) (risk.FormInput, error) {
	if err := s.validate.Struct(req); err != nil {
		return risk.FormInput{}, fmt.Errorf("%w: %v", ErrSubmissionInvalid, err)
	}

	hazards := risk.ExposureFromMap(req.HazardExposures)
	if err := hazards.Validate(); err != nil {
		return risk.FormInput{}, fmt.Errorf("%w: %v", ErrSubmissionInvalid, err)
	}

	symptoms := make([]string, 0, len(req.Symptoms))
	seen := make(map[string]bool, len(req.Symptoms))
	for _, sym := range req.Symptoms {
		sym = strings.TrimSpace(sym)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symptoms = append(symptoms, sym)
	}

	return risk.FormInput{
		ShiftDurationHours: *req.ShiftDurationHours,
		FatigueLevel:       *req.FatigueLevel,
		PPEItemsRequired:   *req.PPEItemsRequired,
		PPEItemsUsed:       *req.PPEItemsUsed,
		HazardHours:        hazards,
		Symptoms:           symptoms,
		IncidentReported:   *req.IncidentReported,
	}, nil
}

// resolveDate 解析提交日期：缺省为策略时区下的今天，不能是未来，最多补交 7 天
func (s *submissionService) resolveDate(raw string) (time.Time, error) {
	today := s.clock.Today()
	if raw == "" {
		return today, nil
	}

	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: 日期格式应为 YYYY-MM-DD", ErrSubmissionInvalid)
	}

	diff := risk.DayDiff(today, day)
	if diff < 0 {
		return time.Time{}, ErrSubmissionFutureDate
	}
	if diff > maxBackfillDays {
		return time.Time{}, ErrSubmissionTooOld
	}
	return day, nil
}

func (s *submissionService) buildFeatures(ctx context.Context, user *model.User, day time.Time, form risk.FormInput) (risk.FeatureVector, int, error) {
	prior, err := s.repo.Submission.ListByUser(ctx, user.UserID, day.AddDate(0, 0, -s.historyDays), 0)
	if err != nil {
		s.logger.Error("查询历史提交失败", zap.String("user_id", user.UserID), zap.Error(err))
		return risk.FeatureVector{}, 0, err
	}

	fv, baseline := risk.BuildFeatures(day, form, toRiskProfile(user), toRiskSubmissions(prior))
	return fv, baseline, nil
}

// score 调用外部评分服务，任何失败都回退到规则分
func (s *submissionService) score(ctx context.Context, userID string, fv risk.FeatureVector, baseline int) (int, string) {
	if s.scorer == nil {
		return baseline, model.ScoreSourceRule
	}

	score, err := s.scorer.Score(ctx, fv)
	if err != nil {
		s.logger.Warn("外部评分失败，使用规则评分",
			zap.String("user_id", userID),
			zap.Int("rule_based_score", baseline),
			zap.Error(err),
		)
		return baseline, model.ScoreSourceRule
	}
	return risk.ClampScore(score), model.ScoreSourceModel
}
