package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxOpenConns    = 20
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// GetDbConn 開啟書店的 postgres 連線並確認可用
func GetDbConn(dbname, host, port, user, pas string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable", user, pas, host, port, dbname)

	// email、訂單編號重複時 repo 要拿到 gorm.ErrDuplicatedKey，而不是 driver 自己的錯誤碼
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open bookstore db %s@%s:%s: %w", dbname, host, port, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	// 結帳會同時開多個transaction，限制上限避免把 postgres 連線數吃光
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping bookstore db: %w", err)
	}
	return conn, nil
}
