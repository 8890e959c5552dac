package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/appusage/internal/config"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Database.Path = filepath.Join(t.TempDir(), "usage.db")
	// Point at a socket that does not exist so the listener just retries.
	cfg.Sway.Socket = filepath.Join(t.TempDir(), "no-such.sock")
	cfg.Server.Enabled = false

	d, err := New(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, d.GetStatus())

	ctx := context.Background()
	require.NoError(t, d.Start(ctx))
	assert.Equal(t, StatusRunning, d.GetStatus())
	assert.NotEmpty(t, d.SessionID())

	stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(stopCtx))
	assert.Equal(t, StatusStopped, d.GetStatus())
}

func TestDaemonStopIsIdempotent(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Database.Path = filepath.Join(t.TempDir(), "usage.db")
	cfg.Sway.Socket = filepath.Join(t.TempDir(), "no-such.sock")
	cfg.Server.Enabled = false

	d, err := New(cfg, "")
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))

	require.NoError(t, d.Stop(context.Background()))
	require.NoError(t, d.Stop(context.Background()))
}

func TestReloadConfigSwapsRules(t *testing.T) {
	d := newTestDaemon(t)
	ctx := context.Background()

	newCfg := &config.Config{}
	newCfg.ApplyDefaults()
	newCfg.Database.Path = d.GetConfig().Database.Path
	newCfg.Tracker.Ignore = []string{"slack"}
	require.NoError(t, d.ReloadConfig(newCfg))
	assert.Equal(t, newCfg, d.GetConfig())

	// Time spent in an ignored app is dropped when its interval closes.
	d.tracker.FocusChanged(ctx, 1, "slack")
	time.Sleep(10 * time.Millisecond)
	d.tracker.FocusChanged(ctx, 2, "firefox")
	d.tracker.Flush(ctx)

	total, err := d.store.Total(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestReloadConfigRejectsNil(t *testing.T) {
	d := newTestDaemon(t)
	assert.Error(t, d.ReloadConfig(nil))
}

func TestIdleStateFromTick(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantIdle bool
		wantOK   bool
	}{
		{"idle", "appusage:idle", true, true},
		{"resume", "appusage:resume", false, true},
		{"unknown suffix", "appusage:lunch", false, false},
		{"foreign tick", "someoneelse:idle", false, false},
		{"empty", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idle, ok := idleStateFromTick("appusage:", tt.payload)
			assert.Equal(t, tt.wantIdle, idle)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}