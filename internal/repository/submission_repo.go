package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/krunal16-c/saskhack/internal/model"
)

// SubmissionRepository 每日自评数据访问接口
type SubmissionRepository interface {
	// Upsert 按 (user_id, date) 插入或覆盖，单条语句完成
	Upsert(ctx context.Context, sub *model.DailySubmission) error
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.DailySubmission, error)
	// ListByUser 返回 date ≥ since 的提交，按日期降序；limit ≤ 0 表示不限
	ListByUser(ctx context.Context, userID string, since time.Time, limit int) ([]model.DailySubmission, error)
	// ListByUsers 一次取出多名员工 date ≥ since 的提交，按日期降序
	ListByUsers(ctx context.Context, userIDs []string, since time.Time) ([]model.DailySubmission, error)
}

// 重复提交时覆盖的列（submitted_at / created_at 保留首次提交值）
var submissionUpsertColumns = []string{
	"shift_duration_hours",
	"fatigue_level",
	"ppe_items_required",
	"ppe_items_used",
	"ppe_compliance_rate",
	"hazard_exposures",
	"total_hazard_exposure_hours",
	"symptoms",
	"incident_reported",
	"incident_description",
	"notes",
	"rule_based_score",
	"risk_score",
	"score_source",
	"updated_at",
	"updated_by",
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Upsert(ctx context.Context, sub *model.DailySubmission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns(submissionUpsertColumns),
		}).
		Create(sub).Error
}

func (r *submissionRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.DailySubmission, error) {
	var sub model.DailySubmission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date.Format(time.DateOnly)).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) ListByUser(ctx context.Context, userID string, since time.Time, limit int) ([]model.DailySubmission, error) {
	var subs []model.DailySubmission
	db := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since.Format(time.DateOnly)).
		Order("date DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&subs).Error
	return subs, err
}

func (r *submissionRepo) ListByUsers(ctx context.Context, userIDs []string, since time.Time) ([]model.DailySubmission, error) {
	var subs []model.DailySubmission
	if len(userIDs) == 0 {
		return subs, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND date >= ?", userIDs, since.Format(time.DateOnly)).
		Order("date DESC").
		Find(&subs).Error
	return subs, err
}
