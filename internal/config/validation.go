package config

import (
	"fmt"
	"net"
	"slices"
)

var validLevels = []string{"debug", "info", "warn", "error"}
var validFormats = []string{"text", "json"}

// Validate checks the configuration for values that would fail later in
// surprising places. Call after ApplyDefaults.
func (c *Config) Validate() error {
	if c.Tracker.FlushInterval.Std() <= 0 {
		return fmt.Errorf("tracker.flush_interval must be positive")
	}
	if c.Tracker.MinDuration.Std() < 0 {
		return fmt.Errorf("tracker.min_duration cannot be negative")
	}
	if c.Server.Enabled {
		if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
			return fmt.Errorf("server.listen %q is not host:port: %w", c.Server.Listen, err)
		}
	}
	if c.Publish.Enabled && c.Publish.URL == "" {
		return fmt.Errorf("publish.url is required when publishing is enabled")
	}
	if c.Retention.KeepDays < 0 {
		return fmt.Errorf("retention.keep_days cannot be negative")
	}
	if !slices.Contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not one of %v", c.Logging.Level, validLevels)
	}
	if !slices.Contains(validFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format %q is not one of %v", c.Logging.Format, validFormats)
	}
	return nil
}
