// Package repotest 测试用的内存 SQLite 仓储
package repotest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-storefront/internal/core/database"
	"go-gin-storefront/internal/repo"
)

// Open 每次返回一个独立的空库；单连接保证 :memory: 库不丢
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
		Log:          zap.NewNop(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
