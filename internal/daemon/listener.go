package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/appusage/internal/daemon/events"
	"git.home.luguber.info/inful/appusage/internal/logfields"
	"git.home.luguber.info/inful/appusage/internal/retry"
	"git.home.luguber.info/inful/appusage/internal/sway"
)

// runListener keeps a compositor connection alive, reconnecting with capped
// backoff when the socket drops (compositor restarts, session changes).
func (d *Daemon) runListener(ctx context.Context) {
	policy := retry.DefaultPolicy()
	attempt := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopChan:
			return
		default:
		}

		start := time.Now()
		err := d.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		select {
		case <-d.stopChan:
			return
		default:
		}

		if err != nil {
			slog.Warn("Compositor connection lost", logfields.Error(err))
		}
		d.metrics.Reconnect()

		// A connection that lived for a while resets the backoff.
		if time.Since(start) > time.Minute {
			attempt = 0
		}
		attempt++
		delay := policy.Delay(attempt)
		slog.Info("Reconnecting to compositor", "delay", delay.String())
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		case <-d.stopChan:
			return
		}
	}
}

// listenOnce runs one compositor session: connect, seed current focus,
// subscribe, and translate events onto the bus until the connection ends.
func (d *Daemon) listenOnce(ctx context.Context) error {
	cfg := d.GetConfig()

	socketPath := cfg.Sway.Socket
	if socketPath == "" {
		var err error
		if socketPath, err = sway.SocketPath(); err != nil {
			return err
		}
	}

	client, err := sway.Dial(socketPath)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if version, err := client.GetVersion(); err == nil {
		slog.Info("Connected to compositor",
			logfields.Socket(socketPath), "version", version.HumanReadable)
	} else {
		slog.Warn("Compositor version query failed", logfields.Error(err))
	}

	// Seed the tracker with whatever currently holds focus so the first
	// interval doesn't wait for a focus change.
	if tree, err := client.GetTree(); err == nil {
		if focused := tree.FindFocused(); focused != nil {
			d.publishEvent(ctx, events.WindowFocused{
				WindowID: focused.ID,
				App:      focused.ResolveApp(),
				At:       time.Now(),
			})
		}
	} else {
		slog.Warn("Layout tree query failed", logfields.Error(err))
	}

	if err := client.Subscribe(sway.SubscribeWindow, sway.SubscribeTick, sway.SubscribeShutdown); err != nil {
		return err
	}

	ch := make(chan sway.Event, 64)
	listenErr := make(chan error, 1)
	listenCtx, cancelListen := context.WithCancel(ctx)
	defer cancelListen()
	go func() { listenErr <- client.Listen(listenCtx, ch) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.stopChan:
			return nil
		case err := <-listenErr:
			return err
		case ev := <-ch:
			if err := d.handleCompositorEvent(ctx, cfg.Sway.TickPrefix, ev); err != nil {
				return err
			}
		}
	}
}

func (d *Daemon) handleCompositorEvent(ctx context.Context, tickPrefix string, ev sway.Event) error {
	switch ev.Type {
	case sway.EventWindow:
		switch ev.Window.Change {
		case "focus":
			d.publishEvent(ctx, events.WindowFocused{
				WindowID: ev.Window.Container.ID,
				App:      ev.Window.Container.ResolveApp(),
				At:       time.Now(),
			})
		case "close":
			d.publishEvent(ctx, events.WindowClosed{
				WindowID: ev.Window.Container.ID,
				At:       time.Now(),
			})
		}
	case sway.EventTick:
		if ev.Tick.First {
			return nil
		}
		if idle, ok := idleStateFromTick(tickPrefix, ev.Tick.Payload); ok {
			d.publishEvent(ctx, events.IdleStateChanged{Idle: idle, At: time.Now()})
		}
	case sway.EventShutdown:
		slog.Info("Compositor is shutting down", logfields.Change(ev.Shutdown.Change))
		return fmt.Errorf("compositor shutdown: %s", ev.Shutdown.Change)
	}
	return nil
}

// idleStateFromTick maps a tick payload to an idle state. Ticks are how
// swayidle reports idleness to us:
//
//	swayidle timeout 30 'swaymsg -t send_tick appusage:idle' \
//	         resume 'swaymsg -t send_tick appusage:resume'
func idleStateFromTick(prefix, payload string) (idle, ok bool) {
	if !strings.HasPrefix(payload, prefix) {
		return false, false
	}
	switch strings.TrimPrefix(payload, prefix) {
	case "idle":
		return true, true
	case "resume":
		return false, true
	default:
		return false, false
	}
}

func (d *Daemon) publishEvent(ctx context.Context, ev any) {
	if err := d.bus.Publish(ctx, ev); err != nil {
		slog.Debug("Event not delivered", logfields.Error(err))
	}
}
