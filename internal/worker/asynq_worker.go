package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/walletvault/internal/logger"
	"github.com/walletvault/internal/provider"
	"github.com/walletvault/internal/queue"
	"github.com/walletvault/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskAccountWelcomeEmail, c.handleAccountWelcomeEmail)
}

func (c *Consumer) handleAccountWelcomeEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_welcome_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.AccountWelcomeEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_welcome_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_welcome_email_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	user, err := c.UserRepo.GetByID(payload.UserID)
	if err != nil {
		logger.Warnw("worker_welcome_email_fetch_user_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	if user == nil {
		logger.Debugw("worker_welcome_email_skip_user_not_found", "user_id", payload.UserID)
		return nil
	}
	receiverEmail := strings.TrimSpace(user.Email)
	if receiverEmail == "" {
		logger.Debugw("worker_welcome_email_skip_empty_receiver", "user_id", user.ID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_welcome_email_skip_email_service_nil", "user_id", user.ID)
		return nil
	}
	if err := c.EmailService.SendWelcome(receiverEmail, user.WalletName, user.RecoveryID); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailServiceDisabled), errors.Is(err, service.ErrEmailServiceNotConfigured):
			logger.Debugw("worker_welcome_email_skip_service_unavailable", "user_id", user.ID)
			return nil
		case errors.Is(err, service.ErrEmailRecipientRejected):
			logger.Warnw("worker_welcome_email_recipient_rejected", "user_id", user.ID, "receiver_email", receiverEmail)
			return nil
		default:
			logger.Warnw("worker_welcome_email_send_failed",
				"user_id", user.ID,
				"receiver_email", receiverEmail,
				"error", err,
			)
			return err
		}
	}
	return nil
}
