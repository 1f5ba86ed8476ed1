package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricedesk.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFile_MergesOverDefaults(t *testing.T) {
	path := writeFile(t, `
addr: ":9090"
api_base_url: https://pricing.example.com/api
session_ttl: 30m
paging:
  cable: server
`)
	cfg := DefaultServerConfig()
	if err := LoadFile(path, &cfg); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.APIBaseURL != "https://pricing.example.com/api" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.Paging["cable"] != "server" {
		t.Errorf("Paging = %v", cfg.Paging)
	}
	// Untouched by the file.
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("defaults lost: level=%q format=%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadFile_EmptyPathIsNoop(t *testing.T) {
	cfg := DefaultCLIConfig()
	if err := LoadFile("", &cfg); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	def := DefaultCLIConfig()
	if cfg.Server != def.Server || cfg.LogLevel != def.LogLevel || cfg.LogFormat != def.LogFormat || cfg.Paging != nil {
		t.Errorf("cfg changed: %+v", cfg)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	cfg := DefaultServerConfig()
	if err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg); err == nil {
		t.Error("expected error for missing file")
	}
	if err := LoadFile(writeFile(t, "addr: [unclosed"), &cfg); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "http://env.example.com")
	t.Setenv(EnvDBPath, "/tmp/env.db")

	srv := DefaultServerConfig()
	srv.ApplyEnv()
	if srv.APIBaseURL != "http://env.example.com" || srv.DBPath != "/tmp/env.db" {
		t.Errorf("server config = %+v", srv)
	}

	cli := DefaultCLIConfig()
	cli.ApplyEnv()
	if cli.Server != "http://env.example.com" {
		t.Errorf("cli Server = %q", cli.Server)
	}
}
