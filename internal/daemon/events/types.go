package events

import (
	"time"

	"git.home.luguber.info/inful/appusage/internal/store"
)

// WindowFocused indicates a window took focus in the compositor.
//
// This is an orchestration event used by the daemon's in-process control
// flow; it is not durable.
type WindowFocused struct {
	WindowID int64
	App      string
	At       time.Time
}

// WindowClosed indicates a window was closed.
type WindowClosed struct {
	WindowID int64
	At       time.Time
}

// IdleStateChanged indicates the seat went idle or became active again.
type IdleStateChanged struct {
	Idle bool
	At   time.Time
}

// RecordWritten is emitted after a usage record was persisted. The optional
// NATS publisher consumes it.
type RecordWritten struct {
	Record store.Record
}
