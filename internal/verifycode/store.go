// Package verifycode 定义邮箱验证码的临时存储抽象。
// 记录以邮箱为键，进程重启后丢失属预期行为：验证码可随时重新签发。
package verifycode

import (
	"context"
	"sync"
	"time"
)

// Record 单条验证码记录
type Record struct {
	Code      string    `json:"code"`       // 6 位数字验证码
	CreatedAt time.Time `json:"created_at"` // 签发时间
	ExpiresAt time.Time `json:"expires_at"` // 过期时间
	Attempts  int       `json:"attempts"`   // 已校验次数
}

// Store 验证码键值存储接口。Set 覆盖同键旧记录，Get 未命中返回 nil。
type Store interface {
	Get(ctx context.Context, email string) (*Record, error)
	Set(ctx context.Context, email string, record *Record) error
	Delete(ctx context.Context, email string) error
}

// MemoryStore 进程内存储实现
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Get 读取记录
func (s *MemoryStore) Get(_ context.Context, email string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[email]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Set 写入记录，覆盖旧值
func (s *MemoryStore) Set(_ context.Context, email string, record *Record) error {
	if record == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[email] = *record
	return nil
}

// Delete 删除记录
func (s *MemoryStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, email)
	return nil
}
