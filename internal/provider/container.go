package provider

import (
	"github.com/walletvault/internal/cache"
	"github.com/walletvault/internal/config"
	"github.com/walletvault/internal/logger"
	"github.com/walletvault/internal/models"
	"github.com/walletvault/internal/queue"
	"github.com/walletvault/internal/repository"
	"github.com/walletvault/internal/service"
	"github.com/walletvault/internal/verifycode"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo repository.UserRepository

	// Services
	EmailService      *service.EmailService
	VerifyCodeService *service.VerifyCodeService
	AccountService    *service.AccountService
	CaptchaService    *service.CaptchaService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.UserRepo = repository.NewUserRepository(models.DB)

	// 验证码存储：Redis 可用时跨实例共享，否则退回进程内存
	var codeStore verifycode.Store
	if cache.Enabled() {
		codeStore = cache.NewRedisCodeStore()
	} else {
		codeStore = verifycode.NewMemoryStore()
	}

	c.EmailService = service.NewEmailService(&cfg.Email)
	c.VerifyCodeService = service.NewVerifyCodeService(cfg.Email.VerifyCode, codeStore, c.EmailService)
	c.AccountService = service.NewAccountService(cfg, c.UserRepo, c.VerifyCodeService, c.QueueClient)
	c.CaptchaService = service.NewCaptchaService(cfg.Captcha)

	return c
}
