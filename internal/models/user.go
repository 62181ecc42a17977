package models

import (
	"time"

	"github.com/walletvault/internal/constants"

	"gorm.io/gorm"
)

// User 钱包账户表
// blobs 为客户端加密后的钱包机密（助记词、私钥密文），服务端只存取、从不解密。
type User struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                       // 主键
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`          // 邮箱（统一小写存储）
	WalletAddress      string         `gorm:"uniqueIndex;not null" json:"wallet_address"` // 链上地址
	WalletName         string         `gorm:"uniqueIndex;not null" json:"wallet_name"`    // 钱包展示名
	RecoveryID         string         `gorm:"uniqueIndex;not null" json:"recovery_id"`    // 恢复 ID，分配后不可变
	Blobs              string         `gorm:"type:text" json:"blobs"`                     // 加密负载（不透明 JSON）
	PasswordSalt       *string        `json:"-"`                                          // 密码盐（base64，未设置密码时为空）
	PasswordHash       *string        `json:"-"`                                          // 密码哈希（base64，不返回给前端）
	SubscriptionStatus string         `gorm:"default:'inactive'" json:"subscription_status"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// HasCredentials 判断账户是否已设置密码
func (u *User) HasCredentials() bool {
	return u != nil && u.PasswordSalt != nil && u.PasswordHash != nil
}

// NewUser 构建初始账户记录
func NewUser(email, walletAddress, walletName, recoveryID, blobs string) *User {
	now := time.Now()
	return &User{
		Email:              email,
		WalletAddress:      walletAddress,
		WalletName:         walletName,
		RecoveryID:         recoveryID,
		Blobs:              blobs,
		SubscriptionStatus: constants.SubscriptionStatusInactive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
