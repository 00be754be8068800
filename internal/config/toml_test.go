package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Clicker.Count != nil || cfg.Log.Path != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[clicker]
count = 25
interval = 250

[log]
level = "info"
path = "/tmp/clicks.log"

[report]
dir = "reports"

[hotkeys]
global = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Clicker.Count == nil || *cfg.Clicker.Count != 25 {
		t.Fatalf("unexpected count: %+v", cfg.Clicker.Count)
	}
	if cfg.Clicker.Interval == nil || *cfg.Clicker.Interval != 250 {
		t.Fatalf("unexpected interval: %+v", cfg.Clicker.Interval)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "info" {
		t.Fatalf("unexpected log level: %+v", cfg.Log.Level)
	}
	if cfg.Report.Dir == nil || *cfg.Report.Dir != "reports" {
		t.Fatalf("unexpected report dir: %+v", cfg.Report.Dir)
	}
	if cfg.Hotkeys.Global == nil || !*cfg.Hotkeys.Global {
		t.Fatalf("unexpected hotkeys: %+v", cfg.Hotkeys.Global)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[clicker]\nspeed = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestDefaultConfigPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	want := filepath.Join(dir, "autoclick", "config.toml")
	if got := DefaultConfigPath(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
