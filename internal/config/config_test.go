package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GatewayURL != "http://localhost:8000" {
		t.Errorf("Expected default gateway URL, got %s", cfg.GatewayURL)
	}
	if cfg.GatewayTimeout != 0 {
		t.Errorf("Expected no gateway timeout, got %s", cfg.GatewayTimeout)
	}
	if !cfg.PurgeOnHome {
		t.Errorf("Expected purge on home by default")
	}
	if cfg.DefaultLanguage != "fr" {
		t.Errorf("Expected default language fr, got %s", cfg.DefaultLanguage)
	}
	if cfg.ArticleLength != 1500 || cfg.DetailLevel != 3 {
		t.Errorf("Unexpected article defaults: length=%d detail=%d", cfg.ArticleLength, cfg.DetailLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GATEWAY_URL", "http://gateway.internal:9000/")
	t.Setenv("GATEWAY_TIMEOUT", "90s")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("WIZARD_PURGE_ON_HOME", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GatewayURL != "http://gateway.internal:9000" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.GatewayURL)
	}
	if cfg.GatewayTimeout != 90*time.Second {
		t.Errorf("Expected 90s timeout, got %s", cfg.GatewayTimeout)
	}
	if cfg.StoreDriver != "memory" {
		t.Errorf("Expected memory driver, got %s", cfg.StoreDriver)
	}
	if cfg.PurgeOnHome {
		t.Errorf("Expected purge on home disabled")
	}
}

func TestLoadRejectsDetailLevel(t *testing.T) {
	t.Setenv("WIZARD_DETAIL_LEVEL", "9")
	if _, err := Load(); err == nil {
		t.Errorf("Expected error for detail level out of range")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.level}
			if got := cfg.SlogLevel(); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
