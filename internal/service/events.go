package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/krunal16-c/saskhack/internal/model"
	"github.com/krunal16-c/saskhack/internal/risk"
)

// 风险事件主题
const (
	SubjectRiskAssessed = "risk.assessed"
	SubjectRiskAlert    = "risk.alert"
)

// EventPublisher 风险事件发布端口（由 pkg/messaging 实现）
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// RiskEvent 评分完成事件
type RiskEvent struct {
	EventID        string    `json:"event_id"`
	UserID         string    `json:"user_id"`
	SubmissionID   string    `json:"submission_id"`
	Date           string    `json:"date"`
	RiskScore      int       `json:"risk_score"`
	RuleBasedScore int       `json:"rule_based_score"`
	RiskLevel      string    `json:"risk_level"`
	ScoreSource    string    `json:"score_source"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func newRiskEvent(sub *model.DailySubmission, at time.Time) RiskEvent {
	return RiskEvent{
		EventID:        uuid.NewString(),
		UserID:         sub.UserID,
		SubmissionID:   sub.SubmissionID,
		Date:           sub.Date.Format(time.DateOnly),
		RiskScore:      sub.RiskScore,
		RuleBasedScore: sub.RuleBasedScore,
		RiskLevel:      string(risk.Classify(sub.RiskScore)),
		ScoreSource:    sub.ScoreSource,
		OccurredAt:     at,
	}
}

// publishRiskEvents 发布 risk.assessed，高/严重风险额外发布 risk.alert
// 发布失败只记录日志
func publishRiskEvents(ctx context.Context, pub EventPublisher, sub *model.DailySubmission, at time.Time, logger *zap.Logger) {
	if pub == nil {
		return
	}

	evt := newRiskEvent(sub, at)
	if err := pub.Publish(ctx, SubjectRiskAssessed, evt); err != nil {
		logger.Warn("发布风险事件失败", zap.String("subject", SubjectRiskAssessed), zap.String("submission_id", sub.SubmissionID), zap.Error(err))
	}

	if !risk.Classify(sub.RiskScore).Elevated() {
		return
	}
	if err := pub.Publish(ctx, SubjectRiskAlert, evt); err != nil {
		logger.Warn("发布风险事件失败", zap.String("subject", SubjectRiskAlert), zap.String("submission_id", sub.SubmissionID), zap.Error(err))
	}
}
