package mysql

import (
	"testing"
	"time"

	"gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 3307, User: "u", Password: "p", DBName: "accounts"}
	want := "u:p@tcp(db:3307)/accounts?charset=utf8mb4&parseTime=True&loc=Local"
	if got := cfg.DSN(); got != want {
		t.Fatalf("got=%s want=%s", got, want)
	}
}

func TestSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.Port != 3306 || cfg.MaxOpenConns != 100 || cfg.MaxIdleConns != 10 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.ConnMaxLifetime != 30*time.Minute || cfg.ConnectRetries != 10 || cfg.RetryInterval != 2*time.Second {
		t.Fatalf("cfg=%+v", cfg)
	}

	cfg = Config{MaxOpenConns: 5}
	cfg.SetDefaults()
	if cfg.MaxOpenConns != 5 {
		t.Fatal("explicit value overwritten")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"info", "warn", "error", "silent", ""} {
		if newLogger(level) == nil {
			t.Fatalf("nil logger for %q", level)
		}
	}
	var _ logger.Interface = newLogger("info")
}
