package queue

import (
	"encoding/json"

	"github.com/walletvault/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskAccountWelcomeEmail 开户欢迎邮件任务
	TaskAccountWelcomeEmail = constants.TaskAccountWelcomeEmail
)

// AccountWelcomeEmailPayload 欢迎邮件任务载荷
type AccountWelcomeEmailPayload struct {
	UserID uint `json:"user_id"`
}

// NewAccountWelcomeEmailTask 创建欢迎邮件任务
func NewAccountWelcomeEmailTask(payload AccountWelcomeEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAccountWelcomeEmail, body), nil
}
