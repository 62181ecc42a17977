package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/walletvault/internal/config"
	"github.com/walletvault/internal/logger"
	"github.com/walletvault/internal/models"
	"github.com/walletvault/internal/queue"
	"github.com/walletvault/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 8

// normalizeEmail 统一小写并去除首尾空白
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccountService 钱包账户服务
type AccountService struct {
	cfg         *config.Config
	userRepo    repository.UserRepository
	verifyCodes *VerifyCodeService
	queueClient *queue.Client

	generateRecoveryID RecoveryIDGenerator
}

// NewAccountService 创建账户服务
func NewAccountService(cfg *config.Config, userRepo repository.UserRepository, verifyCodes *VerifyCodeService, queueClient *queue.Client) *AccountService {
	return &AccountService{
		cfg:                cfg,
		userRepo:           userRepo,
		verifyCodes:        verifyCodes,
		queueClient:        queueClient,
		generateRecoveryID: GenerateRecoveryID,
	}
}

// CreateAccountInput 创建账户入参
type CreateAccountInput struct {
	Email         string
	WalletAddress string
	WalletName    string
	Blobs         string
}

// CreateAccount 创建账户并分配恢复 ID。
// 先做逐字段唯一性预检以返回明确的冲突错误，再在写库时
// 依赖唯一约束兜底并发竞争；恢复 ID 撞库时换新候选重试。
func (s *AccountService) CreateAccount(input CreateAccountInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	walletAddress := strings.TrimSpace(input.WalletAddress)
	walletName := strings.TrimSpace(input.WalletName)

	if email == "" || walletAddress == "" || walletName == "" || input.Blobs == "" {
		return nil, ErrMissingFields
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	if err := s.checkUnique(email, walletAddress, walletName); err != nil {
		return nil, err
	}

	maxRetries := s.cfg.RecoveryID.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 20
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		recoveryID, err := s.generateRecoveryID()
		if err != nil {
			return nil, err
		}

		user := models.NewUser(email, walletAddress, walletName, recoveryID, input.Blobs)
		err = s.userRepo.Create(user)
		if err == nil {
			logger.Infow("account_created",
				"user_id", user.ID,
				"email", email,
				"wallet_name", walletName,
				"recovery_id_attempts", attempt,
			)
			s.enqueueWelcomeEmail(user)
			return user, nil
		}

		column, ok := repository.IsUniqueViolation(err)
		if !ok {
			return nil, err
		}
		switch column {
		case "recovery_id":
			// 恢复 ID 撞库，换候选重试
			logger.Debugw("recovery_id_collision", "attempt", attempt)
			continue
		case "email":
			return nil, ErrEmailExists
		case "wallet_address":
			return nil, ErrWalletAddressExists
		case "wallet_name":
			return nil, ErrWalletNameExists
		default:
			return nil, err
		}
	}

	logger.Errorw("recovery_id_exhausted",
		"email", email,
		"max_retries", maxRetries,
	)
	return nil, ErrRecoveryIDExhausted
}

func (s *AccountService) checkUnique(email, walletAddress, walletName string) error {
	if existing, err := s.userRepo.GetByEmail(email); err != nil {
		return err
	} else if existing != nil {
		return ErrEmailExists
	}
	if existing, err := s.userRepo.GetByWalletName(walletName); err != nil {
		return err
	} else if existing != nil {
		return ErrWalletNameExists
	}
	if existing, err := s.userRepo.GetByWalletAddress(walletAddress); err != nil {
		return err
	} else if existing != nil {
		return ErrWalletAddressExists
	}
	return nil
}

func (s *AccountService) enqueueWelcomeEmail(user *models.User) {
	// 投递失败不影响账户创建结果
	if err := s.queueClient.EnqueueAccountWelcomeEmail(queue.AccountWelcomeEmailPayload{UserID: user.ID}); err != nil {
		logger.Warnw("welcome_email_enqueue_failed", "user_id", user.ID, "error", err)
	}
}

// LoginResult 登录结果
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Login 邮箱密码登录。
// 账户未设置密码返回 ErrCredentialsNotConfigured，与密码错误区分。
func (s *AccountService) Login(email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if !user.HasCredentials() {
		return nil, ErrCredentialsNotConfigured
	}
	if err := VerifyPassword(password, *user.PasswordSalt, *user.PasswordHash); err != nil {
		logger.Warnw("login_failed", "email", email)
		return nil, err
	}

	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, err
	}

	logger.Infow("login_success", "user_id", user.ID, "email", email)
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// SetPassword 通过邮箱验证码设置或重置登录密码。
// 盐与哈希成对写入，不存在只清其一的中间状态。
func (s *AccountService) SetPassword(ctx context.Context, email, code, password string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" || password == "" {
		return ErrMissingFields
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if err := s.verifyCodes.Validate(ctx, email, code); err != nil {
		return err
	}

	salt, err := NewPasswordSalt()
	if err != nil {
		return err
	}
	hash, err := DerivePassword(password, salt)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateCredentials(user.ID, salt, hash); err != nil {
		return err
	}

	logger.Infow("password_updated", "user_id", user.ID, "email", email)
	return nil
}

// NameByWalletAddress 根据链上地址查询钱包展示名
func (s *AccountService) NameByWalletAddress(walletAddress string) (string, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return "", ErrMissingFields
	}
	user, err := s.userRepo.GetByWalletAddress(walletAddress)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrNotFound
	}
	return user.WalletName, nil
}

// GetUserByID 根据 ID 获取账户
func (s *AccountService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UserClaims 用户会话 JWT 声明
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateUserJWT 签发用户会话令牌
func (s *AccountService) GenerateUserJWT(user *models.User) (string, time.Time, error) {
	expireHours := s.cfg.UserJWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	expiresAt := time.Now().Add(time.Duration(expireHours) * time.Hour)

	claims := UserClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.Email,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseUserJWT 解析并校验用户会话令牌
func (s *AccountService) ParseUserJWT(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
