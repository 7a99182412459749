package config

import (
	"errors"
	"fmt"
)

var validLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Service == "" {
		return errors.New("service must be set")
	}
	if c.Logging.LogDir == "" {
		return errors.New("logging.log_dir must be set")
	}
	if c.Logging.ErrorFile == "" {
		return errors.New("logging.error_file must be set")
	}
	if _, ok := validLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported value %q (expected debug, info, warn, or error)", c.Logging.Level)
	}
	if c.Store.ConnectTimeout <= 0 {
		return errors.New("store.connect_timeout must be positive")
	}
	if c.API.Bind == "" {
		return errors.New("api.bind must be set")
	}
	return nil
}
