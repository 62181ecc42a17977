package service

import (
	"time"

	"github.com/walletvault/internal/config"

	"github.com/mojocn/base64Captcha"
)

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService 图片验证码服务。启用后发送验证码接口需携带挑战答案。
type CaptchaService struct {
	cfg     config.CaptchaConfig
	captcha *base64Captcha.Captcha
}

// NewCaptchaService 创建图片验证码服务
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	if !cfg.Enabled {
		return &CaptchaService{cfg: cfg}
	}

	length := cfg.Length
	if length <= 0 {
		length = 5
	}
	width := cfg.Width
	if width <= 0 {
		width = 240
	}
	height := cfg.Height
	if height <= 0 {
		height = 80
	}
	maxStore := cfg.MaxStore
	if maxStore <= 0 {
		maxStore = 10240
	}
	expire := time.Duration(cfg.ExpireSeconds) * time.Second
	if expire <= 0 {
		expire = 5 * time.Minute
	}

	driver := base64Captcha.NewDriverString(
		height, width,
		cfg.NoiseCount, cfg.ShowLine, length,
		"234567890abcdefghjkmnpqrstuvwxyz",
		nil, base64Captcha.DefaultEmbeddedFonts, nil,
	)
	store := base64Captcha.NewMemoryStore(maxStore, expire)
	return &CaptchaService{
		cfg:     cfg,
		captcha: base64Captcha.NewCaptcha(driver, store),
	}
}

// Enabled 判断图片验证码是否启用
func (s *CaptchaService) Enabled() bool {
	return s != nil && s.cfg.Enabled && s.captcha != nil
}

// GenerateImageChallenge 生成一次图片验证码挑战
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	if !s.Enabled() {
		return nil, ErrCaptchaRequired
	}
	id, b64s, _, err := s.captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{CaptchaID: id, ImageBase64: b64s}, nil
}

// Verify 校验挑战答案，一次性消费。未启用时直接放行。
func (s *CaptchaService) Verify(captchaID, answer string) error {
	if !s.Enabled() {
		return nil
	}
	if captchaID == "" || answer == "" {
		return ErrCaptchaRequired
	}
	if !s.captcha.Verify(captchaID, answer, true) {
		return ErrCaptchaInvalid
	}
	return nil
}
