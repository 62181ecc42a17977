package router

import (
	"fmt"
	"strings"

	"github.com/walletvault/internal/cache"
	"github.com/walletvault/internal/config"
	publichandlers "github.com/walletvault/internal/http/handlers/public"
	"github.com/walletvault/internal/logger"
	"github.com/walletvault/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "wv"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	sendRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:send_verification", redisPrefix),
		WindowSeconds: cfg.Security.SendRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.SendRateLimit.MaxAttempts,
		Message:       "too many verification requests",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/name/:wallet_address", publicHandler.WalletName)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 账户接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/create-account", publicHandler.CreateAccount)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.POST("/send-verification", RateLimitMiddleware(redisClient, sendRule, KeyByIPAndJSONField("email")), publicHandler.SendVerification)
			auth.POST("/verify-code", publicHandler.VerifyCode)
			auth.POST("/password", publicHandler.SetPassword)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.Me)
		}
	}

	return r
}
