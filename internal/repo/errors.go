package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-gin-storefront/internal/domain"
)

// isDupKey 优先用 TranslateError 翻译后的哨兵错误，再按驱动文本兜底
func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func isFKViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.E(domain.KindNotFound, "%s not found", what)
	}
	return err
}
