package constants

// 订阅状态常量
const (
	SubscriptionStatusInactive = "inactive"
	SubscriptionStatusActive   = "active"
)

// 异步任务名称常量
const (
	TaskAccountWelcomeEmail = "account:welcome_email"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 恢复 ID 格式常量
const (
	RecoveryIDLetterCount = 4
	RecoveryIDDigitCount  = 3
)
