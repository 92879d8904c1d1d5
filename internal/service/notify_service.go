package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/model"
	"github.com/krunal16-c/saskhack/internal/repository"
	"github.com/krunal16-c/saskhack/internal/risk"
)

// ── 通知模块业务错误 ──

var (
	ErrNotifyInvalidType   = errors.New("通知类型无效，可选 no_form 或 high_risk")
	ErrNotifyNoRecipients  = errors.New("请至少选择一名员工")
	ErrMailerNotConfigured = errors.New("邮件服务未配置")
)

// Mailer 邮件发送端口（由 pkg/mailer 实现）
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NotifyGuard 同类通知去重端口（由 pkg/redis 实现）
type NotifyGuard interface {
	// MarkOnce 首次标记返回 true
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unmark(ctx context.Context, key string) error
}

var notifySubjects = map[risk.NotificationType]string{
	risk.NotifyNoForm:   "SafetyFirst: Complete your daily form before starting your shift",
	risk.NotifyHighRisk: "SafetyFirst: Do not report to work – elevated risk assessment",
}

var notifyBodies = map[risk.NotificationType]string{
	risk.NotifyNoForm: `Hello %s,

You have not completed your daily safety form for today. Per company policy, you must not start your shift until the form is submitted.

Please log in to SafetyFirst and complete your daily safety assessment before beginning work.

If you have already submitted the form, please disregard this message.

SafetyFirst Admin`,
	risk.NotifyHighRisk: `Hello %s,

Based on our latest risk assessment, your current risk level is elevated. For your safety and the safety of others, please do not report to work today.

A safety coordinator or supervisor will follow up with you. If you believe this is an error or have questions, please contact your manager or the safety team.

SafetyFirst Admin`,
}

// NotifyService 通知业务接口
type NotifyService interface {
	Send(ctx context.Context, req *dto.NotifyRequest) (*dto.NotifyResponse, error)
}

type notifyService struct {
	repo        *repository.Repository
	mailer      Mailer
	guard       NotifyGuard
	clock       clock
	dedupWindow time.Duration
	logger      *zap.Logger
}

// NewNotifyService 创建 NotifyService 实例
func NewNotifyService(
	repo *repository.Repository,
	mailer Mailer,
	guard NotifyGuard,
	clk clock,
	dedupWindow time.Duration,
	logger *zap.Logger,
) NotifyService {
	if dedupWindow <= 0 {
		dedupWindow = 24 * time.Hour
	}
	return &notifyService{
		repo:        repo,
		mailer:      mailer,
		guard:       guard,
		clock:       clk,
		dedupWindow: dedupWindow,
		logger:      logger,
	}
}

// recipient 去重后的收件人
type recipient struct {
	user  *model.User
	email string
}

// ────────────────────── Send ──────────────────────

func (s *notifyService) Send(ctx context.Context, req *dto.NotifyRequest) (*dto.NotifyResponse, error) {
	typ := risk.NotificationType(req.Type)
	if !typ.Valid() {
		return nil, ErrNotifyInvalidType
	}
	ids := uniqueStrings(req.UserIDs)
	if len(ids) == 0 {
		return nil, ErrNotifyNoRecipients
	}
	if s.mailer == nil {
		return nil, ErrMailerNotConfigured
	}

	users, err := s.repo.User.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询通知对象失败", zap.Error(err))
		return nil, err
	}

	recipients := uniqueRecipients(users)
	if len(recipients) == 0 {
		return &dto.NotifyResponse{
			Errors:  []string{},
			Message: "No valid email addresses found for the selected workers.",
		}, nil
	}

	today := s.clock.Today()
	histories, err := s.histories(ctx, recipients, today)
	if err != nil {
		return nil, err
	}

	resp := &dto.NotifyResponse{Total: len(recipients), Errors: []string{}}
	for _, r := range recipients {
		status, err := s.deliver(ctx, typ, r, histories[r.user.UserID], today, req.Force)
		switch status {
		case model.NotifyStatusSent:
			resp.Sent++
		case model.NotifyStatusSkipped:
			resp.Skipped++
		default:
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", r.email, err))
		}
	}

	switch {
	case resp.Failed == 0:
		resp.Message = fmt.Sprintf("Successfully sent %d email(s) to selected workers.", resp.Sent)
	default:
		resp.Message = fmt.Sprintf("Sent %d email(s). %d failed.", resp.Sent, resp.Failed)
	}
	if resp.Skipped > 0 {
		resp.Message += fmt.Sprintf(" %d skipped.", resp.Skipped)
	}

	s.logger.Info("批量通知完成",
		zap.String("type", req.Type),
		zap.Int("total", resp.Total),
		zap.Int("sent", resp.Sent),
		zap.Int("failed", resp.Failed),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

// deliver 向单个收件人发送，返回写入通知记录的状态
func (s *notifyService) deliver(ctx context.Context, typ risk.NotificationType, r recipient, h *risk.History, today time.Time, force bool) (string, error) {
	if !force && !warranted(typ, h) {
		s.record(ctx, typ, r, model.NotifyStatusSkipped, "不满足发送条件")
		return model.NotifyStatusSkipped, nil
	}

	key := fmt.Sprintf("notify:%s:%s:%s", r.user.UserID, typ, today.Format(time.DateOnly))
	if s.guard != nil {
		first, err := s.guard.MarkOnce(ctx, key, s.dedupWindow)
		if err != nil {
			// 去重不可用时照常发送
			s.logger.Warn("通知去重检查失败", zap.String("key", key), zap.Error(err))
		} else if !first {
			s.record(ctx, typ, r, model.NotifyStatusSkipped, "今日已发送同类通知")
			return model.NotifyStatusSkipped, nil
		}
	}

	name := r.user.DisplayName()
	if name == "" {
		name = "Worker"
	}
	body := fmt.Sprintf(notifyBodies[typ], name)

	if err := s.mailer.Send(ctx, r.email, notifySubjects[typ], body); err != nil {
		s.logger.Error("发送通知邮件失败", zap.String("email", r.email), zap.String("type", string(typ)), zap.Error(err))
		if s.guard != nil {
			if uerr := s.guard.Unmark(ctx, key); uerr != nil {
				s.logger.Warn("撤销去重标记失败", zap.String("key", key), zap.Error(uerr))
			}
		}
		s.record(ctx, typ, r, model.NotifyStatusFailed, err.Error())
		return model.NotifyStatusFailed, err
	}

	s.record(ctx, typ, r, model.NotifyStatusSent, "")
	return model.NotifyStatusSent, nil
}

// histories 读取收件人近 90 天提交，用于判断是否需要发送
func (s *notifyService) histories(ctx context.Context, recipients []recipient, today time.Time) (map[string]*risk.History, error) {
	ids := make([]string, len(recipients))
	for i, r := range recipients {
		ids[i] = r.user.UserID
	}

	subs, err := s.repo.Submission.ListByUsers(ctx, ids, today.AddDate(0, 0, -risk.Window90d))
	if err != nil {
		s.logger.Error("查询通知对象提交失败", zap.Error(err))
		return nil, err
	}

	byUser := make(map[string][]risk.Submission, len(ids))
	for i := range subs {
		byUser[subs[i].UserID] = append(byUser[subs[i].UserID], toRiskSubmission(&subs[i]))
	}

	out := make(map[string]*risk.History, len(ids))
	for _, id := range ids {
		out[id] = risk.NewHistory(today, byUser[id])
	}
	return out, nil
}

func (s *notifyService) record(ctx context.Context, typ risk.NotificationType, r recipient, status, reason string) {
	entry := &model.NotificationLog{
		UserID: r.user.UserID,
		Type:   string(typ),
		Email:  r.email,
		Status: status,
		Error:  optionalString(reason),
	}
	if err := s.repo.NotificationLog.Create(ctx, entry); err != nil {
		s.logger.Warn("写入通知记录失败", zap.String("user_id", r.user.UserID), zap.Error(err))
	}
}

func warranted(typ risk.NotificationType, h *risk.History) bool {
	latest, ok := h.Latest()
	return risk.NotificationWarranted(typ, h.SubmittedOn(), latest.RiskScore, ok)
}

// uniqueRecipients 按邮箱去重（忽略大小写），跳过无邮箱的员工
func uniqueRecipients(users []model.User) []recipient {
	out := make([]recipient, 0, len(users))
	seen := make(map[string]bool, len(users))
	for i := range users {
		email := strings.TrimSpace(users[i].Email)
		if email == "" {
			continue
		}
		key := strings.ToLower(email)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, recipient{user: &users[i], email: email})
	}
	return out
}
