package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/walletvault/internal/config"
	"github.com/walletvault/internal/models"
	"github.com/walletvault/internal/provider"
	"github.com/walletvault/internal/queue"
	"github.com/walletvault/internal/repository"
	"github.com/walletvault/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, repository.UserRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	userRepo := repository.NewUserRepository(db)
	container := &provider.Container{
		UserRepo: userRepo,
		// 邮件服务未启用：发送被跳过，任务不重试
		EmailService: service.NewEmailService(&config.EmailConfig{Enabled: false}),
	}
	return NewConsumer(container), userRepo
}

func TestHandleAccountWelcomeEmailInvalidPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)
	task := asynq.NewTask(queue.TaskAccountWelcomeEmail, []byte("{not-json"))
	if err := consumer.handleAccountWelcomeEmail(context.Background(), task); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestHandleAccountWelcomeEmailSkipsMissingUser(t *testing.T) {
	consumer, _ := setupConsumerTest(t)
	task, err := queue.NewAccountWelcomeEmailTask(queue.AccountWelcomeEmailPayload{UserID: 4242})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleAccountWelcomeEmail(context.Background(), task); err != nil {
		t.Fatalf("missing user must not fail the task, got %v", err)
	}
}

func TestHandleAccountWelcomeEmailSkipsDisabledEmailService(t *testing.T) {
	consumer, userRepo := setupConsumerTest(t)
	user := models.NewUser("dave@example.com", "0xdave", "dave-wallet", "QRST789", "{}")
	if err := userRepo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	task, err := queue.NewAccountWelcomeEmailTask(queue.AccountWelcomeEmailPayload{UserID: user.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleAccountWelcomeEmail(context.Background(), task); err != nil {
		t.Fatalf("disabled email service must not fail the task, got %v", err)
	}
}

func TestHandleAccountWelcomeEmailSkipsZeroUserID(t *testing.T) {
	consumer, _ := setupConsumerTest(t)
	task, err := queue.NewAccountWelcomeEmailTask(queue.AccountWelcomeEmailPayload{})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleAccountWelcomeEmail(context.Background(), task); err != nil {
		t.Fatalf("zero user id must not fail the task, got %v", err)
	}
}
