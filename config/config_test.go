package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != "8080" {
		t.Fatalf("http_port = %q", cfg.Server.HTTPPort)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("logging.level = %q", cfg.Logging.Level)
	}
	if cfg.Webhook.Timeout != 5*time.Second {
		t.Fatalf("webhook.timeout = %v", cfg.Webhook.Timeout)
	}
	if cfg.Auth.JWTSecret != "" {
		t.Fatalf("auth enabled by default: %q", cfg.Auth.JWTSecret)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fleet.yaml")
	data := []byte(`
server:
  address: 127.0.0.1
  http_port: "9090"
database:
  driver: sqlite
  dsn: ./fleet.db
webhook:
  timeout: 2s
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1" || cfg.Server.HTTPPort != "9090" {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Webhook.Timeout != 2*time.Second {
		t.Fatalf("timeout = %v", cfg.Webhook.Timeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
