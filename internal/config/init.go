package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfigTemplate = `# appusage configuration
#
# The daemon (appusage-daemon) records focused-window time from the Sway/i3
# IPC socket into a SQLite database; the viewer (appusage) reads it back.

database:
  # Defaults to $XDG_DATA_HOME/appusage/app_usage.db
  path: ""

sway:
  # Defaults to $SWAYSOCK, then $I3SOCK
  socket: ""
  # Idle state is driven by IPC ticks, e.g. from swayidle:
  #   swayidle timeout 30 'swaymsg -t send_tick appusage:idle' \
  #            resume 'swaymsg -t send_tick appusage:resume'
  tick_prefix: "appusage:"

tracker:
  # Open intervals are checkpointed this often; a crash loses at most this
  # much tracked time.
  flush_interval: 1m
  # Intervals shorter than this are discarded.
  min_duration: 1s
  # App ids that should never be recorded.
  ignore: []
  # Raw app id -> display name, applied at record time.
  rename: {}
    # org.mozilla.firefox: Firefox

server:
  enabled: true
  listen: "127.0.0.1:9188"

publish:
  enabled: false
  url: "nats://localhost:4222"
  subject: "appusage.records"
  stream: "APPUSAGE"

retention:
  # Delete records older than this many days (0 disables pruning).
  keep_days: 0

logging:
  level: info
  format: text
`

// Init writes a commented default configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
