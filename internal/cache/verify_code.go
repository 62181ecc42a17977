package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/walletvault/internal/verifycode"
)

// RedisCodeStore Redis 实现的验证码存储。
// 键随记录过期时间自动失效，作为管理器过期检查之外的兜底清理。
type RedisCodeStore struct{}

// NewRedisCodeStore 创建 Redis 验证码存储
func NewRedisCodeStore() *RedisCodeStore {
	return &RedisCodeStore{}
}

func verifyCodeKey(email string) string {
	return fmt.Sprintf("verify_code:%s", email)
}

// Get 读取记录
func (s *RedisCodeStore) Get(ctx context.Context, email string) (*verifycode.Record, error) {
	var record verifycode.Record
	hit, err := GetJSON(ctx, verifyCodeKey(email), &record)
	if err != nil || !hit {
		return nil, err
	}
	return &record, nil
}

// Set 写入记录，覆盖旧值
func (s *RedisCodeStore) Set(ctx context.Context, email string, record *verifycode.Record) error {
	if record == nil {
		return nil
	}
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return SetJSON(ctx, verifyCodeKey(email), record, ttl)
}

// Delete 删除记录
func (s *RedisCodeStore) Delete(ctx context.Context, email string) error {
	return Del(ctx, verifyCodeKey(email))
}
