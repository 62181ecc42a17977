package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 参数。迭代次数调整会使存量哈希失效，只能随迁移变更。
const (
	passwordSaltBytes  = 16
	passwordKeyBytes   = 32
	passwordIterations = 200000
)

// NewPasswordSalt 生成随机盐，base64 编码
func NewPasswordSalt() (string, error) {
	salt := make([]byte, passwordSaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DerivePassword 以给定盐派生密码哈希，base64 编码
func DerivePassword(password, saltB64 string) (string, error) {
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(password), salt, passwordIterations, passwordKeyBytes, sha256.New)
	return base64.StdEncoding.EncodeToString(key), nil
}

// VerifyPassword 校验密码与存储的盐/哈希是否匹配，恒定时间比较。
// 不匹配返回 ErrInvalidCredentials。
func VerifyPassword(password, saltB64, hashB64 string) error {
	derived, err := DerivePassword(password, saltB64)
	if err != nil {
		return err
	}
	stored, err := base64.StdEncoding.DecodeString(hashB64)
	if err != nil {
		return err
	}
	candidate, err := base64.StdEncoding.DecodeString(derived)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(candidate, stored) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
