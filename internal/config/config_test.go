package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chronicle/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Service != "chronicle" {
		t.Fatalf("unexpected default service: %q", cfg.Service)
	}
	if cfg.Store.Path != "" {
		t.Fatalf("store path should default to empty, got %q", cfg.Store.Path)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
service = "orders"

[logging]
log_dir = "` + dir + `"
level = "warn"

[store]
path = "` + filepath.Join(dir, "logs.db") + `"
connect_timeout = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected file at %q to be used, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Service != "orders" || cfg.Logging.Level != "warn" || cfg.Store.ConnectTimeout != 3 {
		t.Fatalf("unexpected parsed config: %#v", cfg)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("CHRONICLE_SERVICE", "billing")
	t.Setenv("CHRONICLE_LOG_LEVEL", "error")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Service != "billing" {
		t.Fatalf("expected env service override, got %q", cfg.Service)
	}
	if cfg.Logging.Level != "error" {
		t.Fatalf("expected env level override, got %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "loud"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestErrorFilePathResolvesUnderLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.LogDir = "/var/log/chronicle"
	cfg.Logging.ErrorFile = "error.log"
	if got := cfg.ErrorFilePath(); got != "/var/log/chronicle/error.log" {
		t.Fatalf("unexpected error file path: %q", got)
	}

	cfg.Logging.ErrorFile = "/tmp/err.log"
	if got := cfg.ErrorFilePath(); got != "/tmp/err.log" {
		t.Fatalf("absolute error_file should win, got %q", got)
	}
}

func TestSampleConfigMentionsEnvVars(t *testing.T) {
	sample := config.SampleConfig()
	for _, want := range []string{"CHRONICLE_SERVICE", "CHRONICLE_STORE_PATH", "[logging]"} {
		if !strings.Contains(sample, want) {
			t.Fatalf("sample config missing %q", want)
		}
	}
}
