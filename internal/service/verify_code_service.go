package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/walletvault/internal/config"
	"github.com/walletvault/internal/logger"
	"github.com/walletvault/internal/verifycode"
)

// VerifyCodeSender 验证码邮件发送接口
type VerifyCodeSender interface {
	SendVerifyCode(toEmail, code string) error
}

// VerifyCodeService 邮箱验证码签发与校验。
// 同一邮箱的记录检查-更新在互斥锁内完成；邮件发送耗时不确定，放在锁外执行。
type VerifyCodeService struct {
	cfg    config.VerifyCodeConfig
	store  verifycode.Store
	sender VerifyCodeSender

	mu  sync.Mutex
	now func() time.Time // 测试注入时钟
}

// NewVerifyCodeService 创建验证码服务
func NewVerifyCodeService(cfg config.VerifyCodeConfig, store verifycode.Store, sender VerifyCodeSender) *VerifyCodeService {
	return &VerifyCodeService{
		cfg:    cfg,
		store:  store,
		sender: sender,
		now:    time.Now,
	}
}

// Issue 为邮箱签发验证码并发送邮件，覆盖该邮箱的旧记录。
// send_interval_seconds 内重复请求返回 ErrVerifyCodeTooFrequent，配置为 0 时不限制。
// 节流检查与落库在同一临界区内完成，发送期间的并发重复请求同样命中节流；
// 发送失败时回滚删除记录，不留下无法投递的验证码。
func (s *VerifyCodeService) Issue(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrInvalidEmail
	}

	code, err := randomVerifyCode()
	if err != nil {
		return err
	}

	s.mu.Lock()
	issuedAt := s.now()
	if interval := s.sendInterval(); interval > 0 {
		existing, err := s.store.Get(ctx, email)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		if existing != nil && issuedAt.Sub(existing.CreatedAt) < interval {
			s.mu.Unlock()
			return ErrVerifyCodeTooFrequent
		}
	}
	record := &verifycode.Record{
		Code:      code,
		CreatedAt: issuedAt,
		ExpiresAt: issuedAt.Add(s.expireTTL()),
		Attempts:  0,
	}
	if err := s.store.Set(ctx, email, record); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	if err := s.sender.SendVerifyCode(email, code); err != nil {
		logger.Errorw("verify_code_send_failed", "email", email, "error", err)
		s.rollbackIssue(ctx, email, record)
		return err
	}

	logger.Infow("verify_code_issued", "email", email, "expires_at", record.ExpiresAt)
	return nil
}

// rollbackIssue 发送失败后删除预占的记录；已被更新的签发覆盖时保留
func (s *VerifyCodeService) rollbackIssue(ctx context.Context, email string, issued *verifycode.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Get(ctx, email)
	if err != nil || current == nil {
		return
	}
	if current.Code != issued.Code || !current.CreatedAt.Equal(issued.CreatedAt) {
		return
	}
	_ = s.store.Delete(ctx, email)
}

// Validate 校验邮箱验证码。
// 记录不存在 / 已过期 / 尝试超限 / 不匹配分别返回对应错误；
// 过期与超限会顺带删除记录，校验成功的验证码一次性消费。
func (s *VerifyCodeService) Validate(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrInvalidEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.store.Get(ctx, email)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrVerifyCodeNotFound
	}
	if s.now().After(record.ExpiresAt) {
		_ = s.store.Delete(ctx, email)
		return ErrVerifyCodeExpired
	}
	if record.Attempts >= s.maxAttempts() {
		_ = s.store.Delete(ctx, email)
		logger.Warnw("verify_code_attempts_exceeded", "email", email)
		return ErrVerifyCodeAttemptsExceeded
	}

	record.Attempts++
	if record.Code != code {
		if err := s.store.Set(ctx, email, record); err != nil {
			return err
		}
		return ErrVerifyCodeInvalid
	}

	if err := s.store.Delete(ctx, email); err != nil {
		return err
	}
	return nil
}

func (s *VerifyCodeService) expireTTL() time.Duration {
	minutes := s.cfg.ExpireMinutes
	if minutes <= 0 {
		minutes = 10
	}
	return time.Duration(minutes) * time.Minute
}

func (s *VerifyCodeService) sendInterval() time.Duration {
	return time.Duration(s.cfg.SendIntervalSeconds) * time.Second
}

func (s *VerifyCodeService) maxAttempts() int {
	if s.cfg.MaxAttempts <= 0 {
		return 5
	}
	return s.cfg.MaxAttempts
}

// randomVerifyCode 生成 [100000, 999999] 区间的 6 位数字验证码
func randomVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
