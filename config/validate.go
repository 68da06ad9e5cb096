package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Pricing.DefaultSamples < 1 {
		return fmt.Errorf("pricing.default_samples must be >= 1, got %d", c.Pricing.DefaultSamples)
	}
	if c.Pricing.MaxSamples < c.Pricing.DefaultSamples {
		return fmt.Errorf("pricing.max_samples must be >= pricing.default_samples (%d), got %d", c.Pricing.DefaultSamples, c.Pricing.MaxSamples)
	}
	if c.Pricing.Workers < 0 {
		return fmt.Errorf("pricing.workers must be >= 0, got %d", c.Pricing.Workers)
	}
	if c.Pricing.ConfidenceLevel <= 0 || c.Pricing.ConfidenceLevel >= 1 {
		return fmt.Errorf("pricing.confidence_level must be in (0, 1), got %v", c.Pricing.ConfidenceLevel)
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}

	if c.Slack.Enabled {
		if c.Slack.AppToken == "" {
			return errors.New("slack.app_token is required when slack is enabled")
		}
		if !strings.HasPrefix(c.Slack.AppToken, "xapp-") {
			return errors.New("slack.app_token must be an app-level token (xapp-...)")
		}
		if c.Slack.BotToken == "" {
			return errors.New("slack.bot_token is required when slack is enabled")
		}
	}

	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", l.Level)
}
