package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Scheduler.ScanInterval.Std() != 30*time.Second {
		t.Errorf("default scan interval = %v, want 30s", cfg.Scheduler.ScanInterval.Std())
	}
}

func TestLoadConfig_ParsesYAMLAndDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
  environment: production
scheduler:
  scan_interval: 10s
  snooze_delay: 2m
remote_store:
  base_url: https://store.example.com
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Scheduler.SnoozeDelay.Std() != 2*time.Minute {
		t.Errorf("snooze delay = %v, want 2m", cfg.Scheduler.SnoozeDelay.Std())
	}
	if cfg.RemoteStore.BaseURL != "https://store.example.com" {
		t.Errorf("base url = %q", cfg.RemoteStore.BaseURL)
	}
	// untouched sections keep their defaults
	if cfg.RateLimit.BurstSize != 20 {
		t.Errorf("burst size = %d, want default 20", cfg.RateLimit.BurstSize)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("REMOTE_STORE_TOKEN", "env-token")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("port = %d, want env override 7777", cfg.Server.Port)
	}
	if cfg.RemoteStore.Token != "env-token" {
		t.Errorf("token = %q, want env override", cfg.RemoteStore.Token)
	}
}
