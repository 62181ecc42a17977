package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// 唯一约束涉及的列名，按约束名/错误文本匹配
var uniqueColumns = []string{
	"recovery_id",
	"wallet_address",
	"wallet_name",
	"email",
}

// IsUniqueViolation 判断错误是否为唯一约束冲突，并解析冲突列名。
// sqlite 报 "UNIQUE constraint failed: users.email"，
// postgres 报 SQLSTATE 23505 并携带 "idx_users_email" 形式的约束名。
func IsUniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	message := strings.ToLower(err.Error())
	matched := errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "sqlstate 23505") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
	if !matched {
		return "", false
	}
	for _, column := range uniqueColumns {
		if strings.Contains(message, column) {
			return column, true
		}
	}
	return "", true
}
