package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
  cors_origins: ["http://localhost:3000"]
redis:
  addr: localhost:6379
quiz:
  default_count: 20
  tick: 1s
guest:
  limit: 3
  fail_open: false
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || len(cfg.Server.CORSOrigins) != 1 {
		t.Fatalf("unexpected server section %+v", cfg.Server)
	}
	if cfg.Quiz.DefaultCount != 20 || cfg.Guest.Limit != 3 {
		t.Fatalf("unexpected quiz/guest sections %+v %+v", cfg.Quiz, cfg.Guest)
	}
	if cfg.GuestFailOpen() {
		t.Fatalf("expected fail_open=false to be honored")
	}
	if TTLDuration(cfg.Quiz.Tick, 0) != time.Second {
		t.Fatalf("expected 1s tick")
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	if !cfg.GuestFailOpen() {
		t.Fatalf("expected fail open by default")
	}
	if TTLDuration("", time.Minute) != time.Minute || TTLDuration("bogus", time.Minute) != time.Minute {
		t.Fatalf("expected fallback durations")
	}
}
