package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/krunal16-c/saskhack/internal/model"
)

// NotificationLogRepository 通知记录数据访问接口
type NotificationLogRepository interface {
	Create(ctx context.Context, log *model.NotificationLog) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.NotificationLog, error)
}

type notificationLogRepo struct {
	db *gorm.DB
}

// NewNotificationLogRepo 创建 NotificationLogRepository 实例
func NewNotificationLogRepo(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepo{db: db}
}

func (r *notificationLogRepo) Create(ctx context.Context, log *model.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *notificationLogRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.NotificationLog, error) {
	var logs []model.NotificationLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
