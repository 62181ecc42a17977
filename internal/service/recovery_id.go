package service

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/walletvault/internal/constants"
)

const (
	recoveryIDLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	recoveryIDDigits  = "0123456789"
)

// RecoveryIDGenerator 恢复 ID 候选值生成函数，便于测试注入固定碰撞序列
type RecoveryIDGenerator func() (string, error)

// GenerateRecoveryID 生成一个随机恢复 ID：4 位大写字母 + 3 位数字。
// 随机源为 crypto/rand，均匀采样，不做唯一性保证，由调用方写库去重。
func GenerateRecoveryID() (string, error) {
	var sb strings.Builder
	sb.Grow(constants.RecoveryIDLetterCount + constants.RecoveryIDDigitCount)
	for i := 0; i < constants.RecoveryIDLetterCount; i++ {
		ch, err := randomChar(recoveryIDLetters)
		if err != nil {
			return "", err
		}
		sb.WriteByte(ch)
	}
	for i := 0; i < constants.RecoveryIDDigitCount; i++ {
		ch, err := randomChar(recoveryIDDigits)
		if err != nil {
			return "", err
		}
		sb.WriteByte(ch)
	}
	return sb.String(), nil
}

func randomChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}
