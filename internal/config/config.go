package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration shared by the daemon and the
// viewer CLI.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Sway      SwayConfig      `yaml:"sway"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Server    ServerConfig    `yaml:"server"`
	Publish   PublishConfig   `yaml:"publish"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig controls where usage records are stored.
type DatabaseConfig struct {
	// Path to the SQLite database file. Empty means the XDG data directory
	// default ($XDG_DATA_HOME/appusage/app_usage.db).
	Path string `yaml:"path,omitempty"`
}

// SwayConfig controls the compositor IPC connection.
type SwayConfig struct {
	// Socket overrides the IPC socket path. Empty means $SWAYSOCK, then $I3SOCK.
	Socket string `yaml:"socket,omitempty"`
	// TickPrefix is the prefix of tick payloads carrying idle state
	// ("<prefix>idle" / "<prefix>resume", sent by swayidle via swaymsg).
	TickPrefix string `yaml:"tick_prefix,omitempty"`
}

// TrackerConfig controls focus accounting behavior.
type TrackerConfig struct {
	// FlushInterval is how often the open interval is checkpointed to the
	// database so a crash loses at most this much tracked time.
	FlushInterval Duration `yaml:"flush_interval,omitempty"`
	// MinDuration discards intervals shorter than this (quick alt-tabs).
	MinDuration Duration `yaml:"min_duration,omitempty"`
	// Ignore lists app ids that should never be recorded.
	Ignore []string `yaml:"ignore,omitempty"`
	// Rename maps raw app ids to display names, applied at record time.
	Rename map[string]string `yaml:"rename,omitempty"`
}

// ServerConfig controls the daemon's HTTP status/metrics endpoint.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"`
}

// PublishConfig controls optional NATS JetStream publication of usage records.
type PublishConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
	Stream  string `yaml:"stream,omitempty"`
}

// RetentionConfig controls automatic pruning of old records.
type RetentionConfig struct {
	// KeepDays deletes records older than this many days. Zero disables pruning.
	KeepDays int `yaml:"keep_days,omitempty"`
}

// LoggingConfig controls daemon log output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text, json
}

// Duration wraps time.Duration with YAML string support ("90s", "5m").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads, defaults, and validates a configuration file. A missing file is
// not an error: the daemon and CLI are fully usable with defaults.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
