package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains console and file sink configuration.
type Logging struct {
	LogDir    string `toml:"log_dir" env:"CHRONICLE_LOG_DIR"`
	ErrorFile string `toml:"error_file" env:"CHRONICLE_ERROR_FILE"`
	Level     string `toml:"level" env:"CHRONICLE_LOG_LEVEL"`
}

// Store contains persistent log store configuration. An empty Path means no
// store is configured and the logger runs console/file-only.
type Store struct {
	Path           string `toml:"path" env:"CHRONICLE_STORE_PATH"`
	ConnectTimeout int    `toml:"connect_timeout" env:"CHRONICLE_STORE_CONNECT_TIMEOUT"`
}

// API contains the chronicled HTTP listener configuration.
type API struct {
	Bind string `toml:"bind" env:"CHRONICLE_API_BIND"`
}

// Config is the root configuration for chronicle binaries.
type Config struct {
	Service string  `toml:"service" env:"CHRONICLE_SERVICE"`
	Logging Logging `toml:"logging"`
	Store   Store   `toml:"store"`
	API     API     `toml:"api"`
}

// SampleConfig returns the annotated sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves ~ prefixes and cleans absolute paths.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// DefaultConfigPath returns the user-level configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/chronicle/config.toml")
}

// Load locates, parses, and validates a configuration file, then applies
// environment overrides. The returned config has all path fields expanded.
// The second return value is the resolved path, the third reports whether a
// file was actually found there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("chronicle.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories chronicled needs at runtime.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Logging.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log directory %q: %w", c.Logging.LogDir, err)
	}
	if c.Store.Path != "" {
		if dir := filepath.Dir(c.Store.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create store directory %q: %w", dir, err)
			}
		}
	}
	return nil
}

// ErrorFilePath resolves the error log file location. Relative error_file
// values are anchored under log_dir.
func (c *Config) ErrorFilePath() string {
	if filepath.IsAbs(c.Logging.ErrorFile) {
		return c.Logging.ErrorFile
	}
	return filepath.Join(c.Logging.LogDir, c.Logging.ErrorFile)
}

func (c *Config) normalize() error {
	c.Service = strings.TrimSpace(c.Service)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	for _, field := range []*string{&c.Logging.LogDir, &c.Logging.ErrorFile, &c.Store.Path} {
		trimmed := strings.TrimSpace(*field)
		if trimmed == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	// Relative error_file values stay relative; they resolve against
	// log_dir in ErrorFilePath.
	return path, nil
}
