package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds the server settings. Values come from an optional YAML
// file referenced by CHESS_CONFIG_FILE, overridden by environment variables.
type AppConfig struct {
	ListenAddr   string
	DefaultLevel int
	ThinkDelay   time.Duration
	WaitCeiling  time.Duration
	OpenBrowser  bool

	AllowedOrigins []string
}

// fileConfig mirrors AppConfig for YAML decoding; durations are strings in
// time.ParseDuration form and pointer fields distinguish "absent" from zero.
type fileConfig struct {
	ListenAddr     string   `yaml:"listen_addr"`
	DefaultLevel   *int     `yaml:"default_level"`
	ThinkDelay     string   `yaml:"think_delay"`
	WaitCeiling    string   `yaml:"wait_ceiling"`
	OpenBrowser    *bool    `yaml:"open_browser"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:   ":8080",
		DefaultLevel: 5,
		ThinkDelay:   500 * time.Millisecond,
		WaitCeiling:  30 * time.Second,
		OpenBrowser:  false,
	}

	if path := strings.TrimSpace(os.Getenv("CHESS_CONFIG_FILE")); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if cfg.DefaultLevel < 1 || cfg.DefaultLevel > 10 {
		return nil, fmt.Errorf("default level %d out of range 1-10", cfg.DefaultLevel)
	}
	if cfg.ThinkDelay < 0 {
		return nil, fmt.Errorf("think delay must be >= 0: %s", cfg.ThinkDelay)
	}
	if cfg.WaitCeiling <= 0 {
		return nil, fmt.Errorf("wait ceiling must be > 0: %s", cfg.WaitCeiling)
	}

	return cfg, nil
}

func applyFile(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if v := strings.TrimSpace(fc.ListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if fc.DefaultLevel != nil {
		cfg.DefaultLevel = *fc.DefaultLevel
	}
	if v := strings.TrimSpace(fc.ThinkDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("think_delay: %w", err)
		}
		cfg.ThinkDelay = d
	}
	if v := strings.TrimSpace(fc.WaitCeiling); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("wait_ceiling: %w", err)
		}
		cfg.WaitCeiling = d
	}
	if fc.OpenBrowser != nil {
		cfg.OpenBrowser = *fc.OpenBrowser
	}
	if len(fc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = append([]string(nil), fc.AllowedOrigins...)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	if v := strings.TrimSpace(os.Getenv("CHESS_LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_DEFAULT_LEVEL")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHESS_DEFAULT_LEVEL: %w", err)
		}
		cfg.DefaultLevel = n
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_THINK_DELAY")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHESS_THINK_DELAY: %w", err)
		}
		cfg.ThinkDelay = d
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_WAIT_CEILING")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHESS_WAIT_CEILING: %w", err)
		}
		cfg.WaitCeiling = d
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_OPEN_BROWSER")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OpenBrowser = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_ALLOWED_ORIGINS")); v != "" {
		cfg.AllowedOrigins = nil
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, s)
			}
		}
	}
	return nil
}
