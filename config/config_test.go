package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadServerConfig failed: %v", err)
	}
	if cfg.ListenAddr != ":8000" || cfg.DataDir != "data" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.RequestTimeout() != 60*time.Second {
		t.Errorf("timeout = %v, want 60s", cfg.RequestTimeout())
	}
}

func TestLoadServerConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "listen_addr = \":9090\"\nrequest_timeout_seconds = 120\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig failed: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.RequestTimeout() != 2*time.Minute {
		t.Errorf("timeout = %v, want 2m", cfg.RequestTimeout())
	}
	// Unset fields keep defaults.
	if cfg.DataDir != "data" {
		t.Errorf("data dir = %q, want default", cfg.DataDir)
	}
}

func TestLoadServerConfigUnparsable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("listen_addr = [broken"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadServerConfig(path); err == nil {
		t.Fatal("expected parse error for malformed config")
	}
}
