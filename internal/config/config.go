// Package config 載入 config.yaml 並補全預設值
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-mem-account/pkg/mysql"
)

// StorageDriver 決定使用哪種帳本實作
type StorageDriver string

const (
	// StorageMemory Mutex 保護的記憶體帳本 + WAL
	StorageMemory StorageDriver = "memory"
	// StorageLMAX 單一寫入者的記憶體帳本 + WAL
	StorageLMAX StorageDriver = "lmax"
	// StorageMySQL 直接以 GORM 讀寫 MySQL
	StorageMySQL StorageDriver = "mysql"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	MySQL   mysql.Config  `yaml:"mysql"`
	Delays  DelayConfig   `yaml:"delays"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StorageConfig struct {
	Driver  StorageDriver `yaml:"driver"`
	WALPath string        `yaml:"wal_path"`
	// SeedFromMySQL 記憶體帳本啟動時先從 MySQL 載入帳戶，再重放 WAL
	SeedFromMySQL bool `yaml:"seed_from_mysql"`
}

// InMemory 是否使用記憶體帳本
func (s StorageConfig) InMemory() bool {
	return s.Driver == StorageMemory || s.Driver == StorageLMAX
}

// DelayConfig 模擬非同步呼叫的延遲
type DelayConfig struct {
	FetchUser time.Duration `yaml:"fetch_user"`
	Status    time.Duration `yaml:"status"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load 讀取並解析 YAML 設定檔
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse 解析 YAML 內容，補全預設值後檢查
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":50051"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageMemory
	}
	if c.Storage.WALPath == "" {
		c.Storage.WALPath = "wal.log"
	}
	if c.Delays.FetchUser == 0 {
		c.Delays.FetchUser = time.Second
	}
	if c.Delays.Status == 0 {
		c.Delays.Status = 200 * time.Millisecond
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.MySQL.SetDefaults()
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageLMAX, StorageMySQL:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.SeedFromMySQL && !c.Storage.InMemory() {
		return fmt.Errorf("seed_from_mysql requires an in-memory driver, got %q", c.Storage.Driver)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel 把 "debug"/"info"/"warn"/"error" 轉成 slog.Level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}
