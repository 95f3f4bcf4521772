package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
db_path: /var/lib/httplog/log.db
expiration_days: 7
cleanup_interval: 6h
api_token: s3cret
`), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "/var/lib/httplog/log.db" {
		t.Errorf("db_path not applied: %q", cfg.DBPath)
	}
	if cfg.ExpirationDays != 7 {
		t.Errorf("expiration_days not applied: %d", cfg.ExpirationDays)
	}
	if time.Duration(cfg.CleanupInterval) != 6*time.Hour {
		t.Errorf("cleanup_interval not applied: %v", cfg.CleanupInterval)
	}
	if cfg.APIToken != "s3cret" {
		t.Errorf("api_token not applied: %q", cfg.APIToken)
	}
	// Untouched keys keep their defaults.
	if cfg.PerPage != 50 || cfg.CronMarker != "httplog_cron" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("db_path: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
