package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	logx "github.com/ustudio/datadog-logger/pkg/logx"
)

const (
	DefaultMinLevel = "error"
	DefaultTimeout  = 10 * time.Second
)

// Validate checks a parsed config. Field paths in errors match the file keys.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error
	if strings.TrimSpace(cfg.Datadog.APIKey) == "" {
		errs = append(errs, fmt.Errorf("datadog.api_key: required (or set %s)", EnvAPIKey))
	}
	if _, err := parseTimeout(cfg.Datadog.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("datadog.timeout: %w", err))
	}
	if lvl := strings.TrimSpace(cfg.Logging.Level); lvl != "" {
		if _, ok := logx.LookupLevel(lvl); !ok {
			errs = append(errs, fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level))
		}
	}
	if lvl := strings.TrimSpace(cfg.Events.MinLevel); lvl != "" {
		if _, ok := logx.LookupLevel(lvl); !ok {
			errs = append(errs, fmt.Errorf("events.min_level: unknown level %q", cfg.Events.MinLevel))
		}
	}
	if cfg.Events.RatePerSec < 0 {
		errs = append(errs, errors.New("events.rate_per_sec: must be >= 0"))
	}
	return errors.Join(errs...)
}

// MinLevel returns events.min_level as a level, defaulting to error.
func (c *Config) MinLevel() logx.Level {
	return logx.ParseLevel(c.Events.MinLevel, logx.LevelError)
}

// Timeout returns datadog.timeout, defaulting to DefaultTimeout.
func (c *Config) Timeout() time.Duration {
	d, err := parseTimeout(c.Datadog.Timeout)
	if err != nil || d == 0 {
		return DefaultTimeout
	}
	return d
}

// parseTimeout accepts a blank string (zero) or a positive Go duration.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	switch {
	case err != nil:
		return 0, fmt.Errorf("invalid duration %q", raw)
	case d <= 0:
		return 0, fmt.Errorf("must be positive, got %q", raw)
	}
	return d, nil
}
