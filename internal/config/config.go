package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "6h".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds the daemon configuration.
type Config struct {
	DBPath          string   `yaml:"db_path"`
	Listen          string   `yaml:"listen"`
	APIToken        string   `yaml:"api_token"`
	SigningSecret   string   `yaml:"signing_secret"`
	ExpirationDays  int      `yaml:"expiration_days"`
	CleanupInterval Duration `yaml:"cleanup_interval"`
	PerPage         int      `yaml:"per_page"`
	CronMarker      string   `yaml:"cron_marker"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes"`
	BacktraceDepth  int      `yaml:"backtrace_depth"`
	FilterScript    string   `yaml:"filter_script"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DBPath:          "httplog.db",
		Listen:          "127.0.0.1:8687",
		ExpirationDays:  1,
		CleanupInterval: Duration(24 * time.Hour),
		PerPage:         50,
		CronMarker:      "httplog_cron",
		MaxBodyBytes:    64 * 1024,
		BacktraceDepth:  16,
	}
}
