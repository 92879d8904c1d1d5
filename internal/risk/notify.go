package risk

// NotificationType 通知类型
type NotificationType string

const (
	// NotifyNoForm 提醒未提交当日表单的员工在开工前完成
	NotifyNoForm NotificationType = "no_form"
	// NotifyHighRisk 通知风险升高的员工今日不要到岗
	NotifyHighRisk NotificationType = "high_risk"
)

// Valid 是否为支持的通知类型
func (t NotificationType) Valid() bool {
	return t == NotifyNoForm || t == NotifyHighRisk
}

// NotificationWarranted 判断是否应向员工发送该类通知
// latest 为员工最近一次提交的分数，hasLatest 为 false 表示没有任何提交
func NotificationWarranted(t NotificationType, submittedToday bool, latest int, hasLatest bool) bool {
	switch t {
	case NotifyNoForm:
		return !submittedToday
	case NotifyHighRisk:
		return hasLatest && Classify(latest).Elevated()
	default:
		return false
	}
}
