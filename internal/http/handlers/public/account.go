package public

import (
	"errors"
	"time"

	"github.com/walletvault/internal/http/response"
	"github.com/walletvault/internal/models"
	"github.com/walletvault/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAccountRequest 创建账户请求
type CreateAccountRequest struct {
	Email         string `json:"email" binding:"required"`
	WalletAddress string `json:"wallet_address" binding:"required"`
	WalletName    string `json:"wallet_name" binding:"required"`
	Blobs         string `json:"blobs" binding:"required"`
}

// CreateAccount 创建钱包账户并分配恢复 ID
func (h *Handler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	user, err := h.AccountService.CreateAccount(service.CreateAccountInput{
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
		WalletName:    req.WalletName,
		Blobs:         req.Blobs,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondError(c, response.CodeBadRequest, "missing required fields", nil)
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "invalid email", nil)
		case errors.Is(err, service.ErrEmailExists):
			respondError(c, response.CodeConflict, "email already exists", nil)
		case errors.Is(err, service.ErrWalletAddressExists):
			respondError(c, response.CodeConflict, "wallet address already exists", nil)
		case errors.Is(err, service.ErrWalletNameExists):
			respondError(c, response.CodeConflict, "wallet name already exists", nil)
		case errors.Is(err, service.ErrRecoveryIDExhausted):
			respondError(c, response.CodeInternal, "could not allocate recovery id", err)
		default:
			respondError(c, response.CodeInternal, "account creation failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":        accountView(user),
		"recovery_id": user.RecoveryID,
	})
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 邮箱密码登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	result, err := h.AccountService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondError(c, response.CodeBadRequest, "missing required fields", nil)
		// 账户不存在与密码错误同文案，避免探测已注册邮箱
		case errors.Is(err, service.ErrNotFound),
			errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "invalid email or password", nil)
		case errors.Is(err, service.ErrCredentialsNotConfigured):
			respondError(c, response.CodeUnauthorized, "password not set for this account", nil)
		default:
			respondError(c, response.CodeInternal, "login failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":       accountView(result.User),
		"token":      result.Token,
		"expires_at": result.ExpiresAt.Format(time.RFC3339),
	})
}

// SetPasswordRequest 设置密码请求
type SetPasswordRequest struct {
	Email    string `json:"email" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SetPassword 通过邮箱验证码设置或重置登录密码
func (h *Handler) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.AccountService.SetPassword(c.Request.Context(), req.Email, req.Code, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondError(c, response.CodeBadRequest, "missing required fields", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, "password too short", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "account not found", nil)
		case errors.Is(err, service.ErrVerifyCodeNotFound):
			respondError(c, response.CodeBadRequest, "verification code not found", nil)
		case errors.Is(err, service.ErrVerifyCodeExpired):
			respondError(c, response.CodeBadRequest, "verification code expired", nil)
		case errors.Is(err, service.ErrVerifyCodeInvalid):
			respondError(c, response.CodeBadRequest, "verification code invalid", nil)
		case errors.Is(err, service.ErrVerifyCodeAttemptsExceeded):
			respondError(c, response.CodeBadRequest, "too many verification attempts", nil)
		default:
			respondError(c, response.CodeInternal, "set password failed", err)
		}
		return
	}

	response.Success(c, gin.H{"updated": true})
}

// WalletName 根据链上地址查询钱包展示名
func (h *Handler) WalletName(c *gin.Context) {
	walletAddress := c.Param("wallet_address")

	name, err := h.AccountService.NameByWalletAddress(walletAddress)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondError(c, response.CodeBadRequest, "wallet address required", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "wallet not found", nil)
		default:
			respondError(c, response.CodeInternal, "lookup failed", err)
		}
		return
	}

	response.Success(c, gin.H{"wallet_name": name})
}

// Me 返回当前登录账户信息
func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.AccountService.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "account not found", nil)
		default:
			respondError(c, response.CodeInternal, "fetch account failed", err)
		}
		return
	}

	response.Success(c, gin.H{"user": accountView(user)})
}

func accountView(user *models.User) gin.H {
	return gin.H{
		"id":                  user.ID,
		"email":               user.Email,
		"wallet_address":      user.WalletAddress,
		"wallet_name":         user.WalletName,
		"recovery_id":         user.RecoveryID,
		"blobs":               user.Blobs,
		"subscription_status": user.SubscriptionStatus,
		"has_password":        user.HasCredentials(),
		"created_at":          user.CreatedAt.Format(time.RFC3339),
	}
}
