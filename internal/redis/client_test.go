package redisdb

import (
	"testing"

	"quitcoach/internal/config"
)

func TestNewClient(t *testing.T) {
	cfg := &config.Config{}
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.DB = 15
	rdb := NewClient(cfg)
	if rdb == nil {
		t.Fatalf("expected non-nil client")
	}
	if rdb.Options().Addr != "localhost:6379" {
		t.Errorf("unexpected addr: %s", rdb.Options().Addr)
	}
	if rdb.Options().DB != 15 {
		t.Errorf("unexpected db: %d", rdb.Options().DB)
	}
}
