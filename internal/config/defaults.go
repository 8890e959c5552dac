package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultListen is the daemon status endpoint bind address.
	DefaultListen = "127.0.0.1:9188"
	// DefaultTickPrefix namespaces idle ticks so unrelated send_tick users
	// don't flip the idle state.
	DefaultTickPrefix = "appusage:"
	// DefaultSubject and DefaultStream are used when publishing is enabled
	// without explicit NATS settings.
	DefaultSubject = "appusage.records"
	DefaultStream  = "APPUSAGE"

	defaultFlushInterval = time.Minute
	defaultMinDuration   = time.Second
)

// ApplyDefaults fills unset fields with their defaults. Safe to call multiple
// times.
func (c *Config) ApplyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath()
	}
	if c.Sway.TickPrefix == "" {
		c.Sway.TickPrefix = DefaultTickPrefix
	}
	if c.Tracker.FlushInterval <= 0 {
		c.Tracker.FlushInterval = Duration(defaultFlushInterval)
	}
	if c.Tracker.MinDuration <= 0 {
		c.Tracker.MinDuration = Duration(defaultMinDuration)
	}
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Publish.Subject == "" {
		c.Publish.Subject = DefaultSubject
	}
	if c.Publish.Stream == "" {
		c.Publish.Stream = DefaultStream
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// DefaultDatabasePath resolves the XDG data location for the usage database.
// The daemon and the viewer must agree on this so they see the same data.
func DefaultDatabasePath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// Last resort: relative to the working directory.
			return filepath.Join("appusage", "app_usage.db")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "appusage", "app_usage.db")
}

// DefaultConfigPath resolves the XDG config location for the config file.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("appusage", "config.yaml")
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "appusage", "config.yaml")
}
