package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyApp        = "app"
	KeyWindowID   = "window_id"
	KeyChange     = "change"
	KeySessionID  = "session_id"
	KeyDurationMS = "duration_ms"
	KeyRecords    = "records"
	KeySubject    = "subject"
	KeySocket     = "socket"
	KeyWindow     = "window"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func App(name string) slog.Attr       { return slog.String(KeyApp, name) }
func WindowID(id int64) slog.Attr     { return slog.Int64(KeyWindowID, id) }
func Change(c string) slog.Attr       { return slog.String(KeyChange, c) }
func SessionID(id string) slog.Attr   { return slog.String(KeySessionID, id) }
func DurationMS(ms int64) slog.Attr   { return slog.Int64(KeyDurationMS, ms) }
func Records(n int64) slog.Attr       { return slog.Int64(KeyRecords, n) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Socket(path string) slog.Attr    { return slog.String(KeySocket, path) }
func Window(name string) slog.Attr    { return slog.String(KeyWindow, name) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
