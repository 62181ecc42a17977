package service

import "errors"

// 业务错误定义。处理器通过 errors.Is 映射为接口错误响应。
var (
	// 输入校验
	ErrMissingFields = errors.New("必填字段缺失")
	ErrInvalidEmail  = errors.New("邮箱格式无效")
	ErrWeakPassword  = errors.New("密码强度不足")

	// 唯一性冲突（需区分具体字段）
	ErrEmailExists         = errors.New("邮箱已被注册")
	ErrWalletAddressExists = errors.New("钱包地址已被注册")
	ErrWalletNameExists    = errors.New("钱包名已被占用")

	// 账户与凭据
	ErrNotFound                 = errors.New("账户不存在")
	ErrInvalidCredentials       = errors.New("邮箱或密码错误")
	ErrCredentialsNotConfigured = errors.New("账户尚未设置密码")

	// 验证码
	ErrVerifyCodeNotFound         = errors.New("验证码不存在")
	ErrVerifyCodeExpired          = errors.New("验证码已过期")
	ErrVerifyCodeInvalid          = errors.New("验证码错误")
	ErrVerifyCodeAttemptsExceeded = errors.New("验证码尝试次数过多")
	ErrVerifyCodeTooFrequent      = errors.New("验证码发送过于频繁")

	// 恢复 ID 分配：重试上限耗尽，需运维关注
	ErrRecoveryIDExhausted = errors.New("恢复 ID 分配重试耗尽")

	// 邮件传输
	ErrEmailServiceDisabled      = errors.New("邮件服务未启用")
	ErrEmailServiceNotConfigured = errors.New("邮件服务未配置")
	ErrEmailSendFailed           = errors.New("邮件发送失败")
	ErrEmailRecipientRejected    = errors.New("收件地址被拒绝")

	// 图片验证码
	ErrCaptchaRequired = errors.New("需要图片验证码")
	ErrCaptchaInvalid  = errors.New("图片验证码错误")
)
