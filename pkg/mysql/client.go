package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Client 封裝 GORM DB 實例
type Client struct {
	db *gorm.DB
}

// NewClient 建立 MySQL 客戶端，連線失敗時依 cfg.ConnectRetries 重試
//
// 參數:
//
//	ctx: 取消時停止重試
//	cfg: MySQL 連線配置
//	log: 重試訊息的 logger
//
// 回傳值:
//
//	*Client: 封裝後的 MySQL 客戶端
//	error: 若連線失敗則回傳錯誤
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	cfg.SetDefaults()
	gormConfig := newGormConfig(cfg.LogLevel)

	var db *gorm.DB
	var err error
	for i := 0; i < cfg.ConnectRetries; i++ {
		db, err = open(ctx, cfg, gormConfig)
		if err == nil {
			break
		}
		if i < cfg.ConnectRetries-1 {
			log.WarnContext(ctx, "mysql connect failed, retrying",
				slog.Int("attempt", i+1),
				slog.Int("max_attempts", cfg.ConnectRetries),
				slog.Duration("retry_in", cfg.RetryInterval),
				slog.Any("error", err),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryInterval):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql after %d attempts: %w", cfg.ConnectRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.db: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &Client{db: db}, nil
}

// NewClientFromConn 以既有的 *sql.DB 建立客戶端 (不重試、不查詢版本)
//
// 參數:
//
//	conn: 已開啟的連線，如 go-sqlmock 建立的 mock
//	logLevel: GORM 日誌等級
//
// 回傳值:
//
//	*Client: 封裝後的 MySQL 客戶端
//	error: GORM 初始化失敗時回傳錯誤
func NewClientFromConn(conn *sql.DB, logLevel string) (*Client, error) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), newGormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return &Client{db: db}, nil
}

func newGormConfig(logLevel string) *gorm.Config {
	return &gorm.Config{
		// 存提款本身會自己開 Transaction，其餘單筆寫入不需要預設事務
		SkipDefaultTransaction: true,
		// 讓 duplicate key 之類的錯誤轉成 gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         newLogger(logLevel),
	}
}

func open(ctx context.Context, cfg Config, gormConfig *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, err
	}
	rawDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := rawDB.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// DB 回傳底層的 *gorm.DB 實例
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close 關閉資料庫連線
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newLogger 根據配置建立 GORM Logger
func newLogger(level string) logger.Interface {
	var logLevel logger.LogLevel
	switch level {
	case "info":
		logLevel = logger.Info
	case "warn":
		logLevel = logger.Warn
	case "error":
		logLevel = logger.Error
	case "silent":
		logLevel = logger.Silent
	default:
		logLevel = logger.Error
	}
	return logger.Default.LogMode(logLevel)
}
