package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/model"
	"github.com/krunal16-c/saskhack/internal/risk"
)

// ── 测试辅助 ──

const testExternalID = "idp_worker_1"

func setupTestSubmissionService(scorer RiskScorer, pub EventPublisher) (SubmissionService, *mockRepos) {
	repo, mocks := newMockRepository()
	mocks.user.add(&model.User{
		UserID:     "uid-worker",
		ExternalID: testExternalID,
		Email:      "worker@example.com",
		Role:       model.RoleWorker,
	})
	svc := NewSubmissionService(repo, scorer, pub, fixedClock(), 90, zap.NewNop())
	return svc, mocks
}

func ptr[T any](v T) *T { return &v }

// scenarioRequest 8 小时班次，噪声 4 小时，疲劳 5，PPE 1/2，无症状无事故 → 规则分 20
func scenarioRequest() *dto.SubmitFormRequest {
	return &dto.SubmitFormRequest{
		ShiftDurationHours: ptr(8.0),
		FatigueLevel:       ptr(5),
		PPEItemsRequired:   ptr(2),
		PPEItemsUsed:       ptr(1),
		HazardExposures:    map[string]float64{"noise": 4},
		Symptoms:           []string{},
		IncidentReported:   ptr(false),
	}
}

func seedSubmission(m *mockSubmissionRepo, userID string, daysAgo, score int) {
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
	_ = m.Upsert(context.Background(), &model.DailySubmission{
		UserID:            userID,
		Date:              day,
		FatigueLevel:      3,
		PPEComplianceRate: 1,
		HazardExposures:   datatypes.NewJSONType(map[string]float64{}),
		Symptoms:          datatypes.NewJSONType([]string{}),
		RuleBasedScore:    score,
		RiskScore:         score,
		ScoreSource:       model.ScoreSourceRule,
		SubmittedAt:       day.Add(7 * time.Hour),
	})
}

// ── Submit 测试 ──

func TestSubmissionService_Submit_RuleScoreEndToEnd(t *testing.T) {
	svc, mocks := setupTestSubmissionService(nil, nil)

	resp, err := svc.Submit(context.Background(), testExternalID, scenarioRequest())
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if resp.Submission.RiskScore != 20 {
		t.Errorf("期望 risk_score=20，实际=%d", resp.Submission.RiskScore)
	}
	if resp.RiskLevel != string(risk.LevelLow) {
		t.Errorf("期望 low，实际=%s", resp.RiskLevel)
	}
	if resp.ScoreSource != model.ScoreSourceRule {
		t.Errorf("未配置评分服务时应使用规则分，实际=%s", resp.ScoreSource)
	}
	if resp.Submission.PPEComplianceRate != 0.5 {
		t.Errorf("期望 PPE 合规率 0.5，实际=%v", resp.Submission.PPEComplianceRate)
	}
	if resp.Submission.Date != "2026-10-15" {
		t.Errorf("缺省日期应为今天，实际=%s", resp.Submission.Date)
	}
	if len(mocks.submission.subs) != 1 {
		t.Errorf("期望写入 1 条，实际=%d", len(mocks.submission.subs))
	}
}

func TestSubmissionService_Submit_UsesModelScore(t *testing.T) {
	scorer := &stubScorer{score: 72}
	svc, _ := setupTestSubmissionService(scorer, nil)

	resp, err := svc.Submit(context.Background(), testExternalID, scenarioRequest())
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if resp.Submission.RiskScore != 72 || resp.ScoreSource != model.ScoreSourceModel {
		t.Errorf("期望使用模型分 72，实际=%d (%s)", resp.Submission.RiskScore, resp.ScoreSource)
	}
	if resp.Submission.RuleBasedScore != 20 {
		t.Errorf("规则分仍应保留为 20，实际=%d", resp.Submission.RuleBasedScore)
	}
	if resp.RiskLevel != string(risk.LevelHigh) {
		t.Errorf("期望 high，实际=%s", resp.RiskLevel)
	}
	if scorer.last.DailyRiskScore != 20 || scorer.last.ConsecutiveDaysWorked != 1 {
		t.Errorf("特征向量不符合预期: %+v", scorer.last)
	}
}

func TestSubmissionService_Submit_ScorerFailureFallsBack(t *testing.T) {
	scorer := &stubScorer{err: ErrScorerUnavailable}
	svc, mocks := setupTestSubmissionService(scorer, nil)

	resp, err := svc.Submit(context.Background(), testExternalID, scenarioRequest())
	if err != nil {
		t.Fatalf("评分服务失败时提交仍应成功: %v", err)
	}
	if resp.Submission.RiskScore != 20 || resp.ScoreSource != model.ScoreSourceRule {
		t.Errorf("期望回退到规则分 20，实际=%d (%s)", resp.Submission.RiskScore, resp.ScoreSource)
	}
	if len(mocks.submission.subs) != 1 {
		t.Error("回退时也必须落库")
	}
}

func TestSubmissionService_Submit_ResubmissionIsIdempotent(t *testing.T) {
	scorer := &stubScorer{score: 35}
	svc, mocks := setupTestSubmissionService(scorer, nil)
	seedSubmission(mocks.submission, "uid-worker", 1, 50)
	seedSubmission(mocks.submission, "uid-worker", 2, 30)

	first, err := svc.Submit(context.Background(), testExternalID, scenarioRequest())
	if err != nil {
		t.Fatalf("首次提交失败: %v", err)
	}
	firstFeatures := scorer.last

	second, err := svc.Submit(context.Background(), testExternalID, scenarioRequest())
	if err != nil {
		t.Fatalf("重复提交失败: %v", err)
	}

	if scorer.last != firstFeatures {
		t.Errorf("同一天相同表单的特征应一致:\n%+v\n%+v", firstFeatures, scorer.last)
	}
	if first.Submission.ID != second.Submission.ID {
		t.Error("重复提交应覆盖同一条记录")
	}
	if first.Submission.SubmittedAt != second.Submission.SubmittedAt {
		t.Error("重复提交应保留首次提交时间")
	}
	if len(mocks.submission.subs) != 3 {
		t.Errorf("期望共 3 条记录，实际=%d", len(mocks.submission.subs))
	}
	if firstFeatures.ConsecutiveDaysWorked != 3 {
		t.Errorf("期望连续工作 3 天（含今天），实际=%d", firstFeatures.ConsecutiveDaysWorked)
	}
}

func TestSubmissionService_Submit_MissingFieldIsValidationError(t *testing.T) {
	svc, mocks := setupTestSubmissionService(nil, nil)

	req := scenarioRequest()
	req.FatigueLevel = nil

	_, err := svc.Submit(context.Background(), testExternalID, req)
	if !errors.Is(err, ErrSubmissionInvalid) {
		t.Errorf("期望 ErrSubmissionInvalid，实际: %v", err)
	}
	if len(mocks.submission.subs) != 0 {
		t.Error("校验失败不应落库")
	}
}

func TestSubmissionService_Submit_NegativeHazardRejected(t *testing.T) {
	svc, _ := setupTestSubmissionService(nil, nil)

	req := scenarioRequest()
	req.HazardExposures = map[string]float64{"noise": -1}

	if _, err := svc.Submit(context.Background(), testExternalID, req); !errors.Is(err, ErrSubmissionInvalid) {
		t.Errorf("负的暴露小时数应被拒绝，实际: %v", err)
	}
}

func TestSubmissionService_Submit_DateRules(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr error
	}{
		{"昨天", "2026-10-14", nil},
		{"7 天前", "2026-10-08", nil},
		{"8 天前", "2026-10-07", ErrSubmissionTooOld},
		{"明天", "2026-10-16", ErrSubmissionFutureDate},
		{"格式错误", "15/10/2026", ErrSubmissionInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupTestSubmissionService(nil, nil)
			req := scenarioRequest()
			req.Date = tt.date

			resp, err := svc.Submit(context.Background(), testExternalID, req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("应成功: %v", err)
			}
			if resp.Submission.Date != tt.date {
				t.Errorf("期望日期 %s，实际=%s", tt.date, resp.Submission.Date)
			}
		})
	}
}

func TestSubmissionService_Submit_UnknownUser(t *testing.T) {
	svc, _ := setupTestSubmissionService(nil, nil)

	if _, err := svc.Submit(context.Background(), "idp_unknown", scenarioRequest()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestSubmissionService_Submit_PublishesEvents(t *testing.T) {
	tests := []struct {
		name  string
		score int
		want  []string
	}{
		{"低风险只发布 assessed", 20, []string{SubjectRiskAssessed}},
		{"高风险额外发布 alert", 75, []string{SubjectRiskAssessed, SubjectRiskAlert}},
		{"严重风险额外发布 alert", 90, []string{SubjectRiskAssessed, SubjectRiskAlert}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &stubPublisher{}
			svc, _ := setupTestSubmissionService(&stubScorer{score: tt.score}, pub)

			if _, err := svc.Submit(context.Background(), testExternalID, scenarioRequest()); err != nil {
				t.Fatalf("Submit 应成功: %v", err)
			}
			got := pub.subjects()
			if len(got) != len(tt.want) {
				t.Fatalf("期望主题 %v，实际 %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("期望主题 %v，实际 %v", tt.want, got)
				}
			}
			evt, ok := pub.events[0].data.(RiskEvent)
			if !ok || evt.RiskScore != tt.score || evt.EventID == "" {
				t.Errorf("事件内容不符合预期: %+v", pub.events[0].data)
			}
		})
	}
}

func TestSubmissionService_Submit_PublishFailureIgnored(t *testing.T) {
	pub := &stubPublisher{err: errors.New("nats: connection closed")}
	svc, _ := setupTestSubmissionService(nil, pub)

	if _, err := svc.Submit(context.Background(), testExternalID, scenarioRequest()); err != nil {
		t.Errorf("事件发布失败不应影响提交: %v", err)
	}
}

func TestSubmissionService_Submit_PersistFailure(t *testing.T) {
	svc, mocks := setupTestSubmissionService(nil, nil)
	mocks.submission.upsertErr = errors.New("db down")

	if _, err := svc.Submit(context.Background(), testExternalID, scenarioRequest()); err == nil {
		t.Error("落库失败应返回错误")
	}
}

// ── List / PreviewFeatures 测试 ──

func TestSubmissionService_List(t *testing.T) {
	svc, mocks := setupTestSubmissionService(nil, nil)
	seedSubmission(mocks.submission, "uid-worker", 0, 10)
	seedSubmission(mocks.submission, "uid-worker", 5, 20)
	seedSubmission(mocks.submission, "uid-worker", 40, 30)
	seedSubmission(mocks.submission, "uid-other", 1, 40)

	list, err := svc.List(context.Background(), testExternalID, 30)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("期望 30 天内 2 条，实际=%d", len(list))
	}
	if list[0].Date != "2026-10-15" {
		t.Errorf("应按日期降序，首条=%s", list[0].Date)
	}

	all, _ := svc.List(context.Background(), testExternalID, 0)
	if len(all) != 3 {
		t.Errorf("默认 90 天应返回 3 条，实际=%d", len(all))
	}
}

func TestSubmissionService_PreviewFeatures_DoesNotPersistOrScore(t *testing.T) {
	scorer := &stubScorer{score: 99}
	repo, mocks := newMockRepository()
	mocks.user.add(&model.User{UserID: "uid-worker", ExternalID: testExternalID, Email: "w@example.com", Age: ptr(45), Gender: ptr("female")})
	svc := NewSubmissionService(repo, scorer, nil, fixedClock(), 90, zap.NewNop())

	resp, err := svc.PreviewFeatures(context.Background(), testExternalID, scenarioRequest())
	if err != nil {
		t.Fatalf("PreviewFeatures 应成功: %v", err)
	}
	if resp.RuleBasedScore != 20 || resp.RiskLevel != string(risk.LevelLow) {
		t.Errorf("期望规则分 20/low，实际=%d/%s", resp.RuleBasedScore, resp.RiskLevel)
	}
	if resp.Features.Age != 45 || resp.Features.GenderEncoded != risk.GenderCodeFemale {
		t.Errorf("画像字段未进入特征: %+v", resp.Features)
	}
	if scorer.calls != 0 || len(mocks.submission.subs) != 0 {
		t.Error("预览不应调用评分服务或落库")
	}
}
