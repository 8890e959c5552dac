package sway

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompositor is the server side of a net.Pipe speaking i3-ipc.
type fakeCompositor struct {
	conn net.Conn
}

func newFakePair(t *testing.T) (*Client, *fakeCompositor) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() {
		_ = clientConn.Close()
		_ = serverConn.Close()
	})
	return NewClient(clientConn), &fakeCompositor{conn: serverConn}
}

func (f *fakeCompositor) expectRequest(t *testing.T, want MessageType) []byte {
	t.Helper()
	rawType, payload, err := readMessage(f.conn)
	require.NoError(t, err)
	require.Equal(t, uint32(want), rawType)
	return payload
}

func (f *fakeCompositor) reply(t *testing.T, msgType MessageType, v any) {
	t.Helper()
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, writeMessage(f.conn, msgType, payload))
}

func (f *fakeCompositor) emit(t *testing.T, evType EventType, v any) {
	t.Helper()
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, writeMessage(f.conn, MessageType(evType), payload))
}

func TestSubscribe(t *testing.T) {
	client, server := newFakePair(t)

	go func() {
		payload := server.expectRequest(t, MessageSubscribe)
		var events []string
		require.NoError(t, json.Unmarshal(payload, &events))
		assert.Equal(t, []string{"window", "tick"}, events)
		server.reply(t, MessageSubscribe, map[string]bool{"success": true})
	}()

	require.NoError(t, client.Subscribe(SubscribeWindow, SubscribeTick))
}

func TestSubscribeRejected(t *testing.T) {
	client, server := newFakePair(t)

	go func() {
		server.expectRequest(t, MessageSubscribe)
		server.reply(t, MessageSubscribe, map[string]bool{"success": false})
	}()

	err := client.Subscribe("bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}

func TestGetVersion(t *testing.T) {
	client, server := newFakePair(t)

	go func() {
		server.expectRequest(t, MessageGetVersion)
		server.reply(t, MessageGetVersion, Version{Major: 1, Minor: 10, HumanReadable: "sway version 1.10"})
	}()

	v, err := client.GetVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v.Major)
	assert.Equal(t, "sway version 1.10", v.HumanReadable)
}

func TestGetTreeSkipsInterleavedEvents(t *testing.T) {
	client, server := newFakePair(t)

	go func() {
		server.expectRequest(t, MessageGetTree)
		// An event racing the reply must not confuse the client.
		server.emit(t, EventTick, TickEvent{First: true})
		server.reply(t, MessageGetTree, Node{ID: 1, Nodes: []*Node{{ID: 7, AppID: "kitty", Focused: true}}})
	}()

	root, err := client.GetTree()
	require.NoError(t, err)
	focused := root.FindFocused()
	require.NotNil(t, focused)
	assert.Equal(t, "kitty", focused.ResolveApp())
}

func TestListenDeliversEvents(t *testing.T) {
	client, server := newFakePair(t)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	ch := make(chan Event, 8)
	listenErr := make(chan error, 1)
	go func() { listenErr <- client.Listen(ctx, ch) }()

	server.emit(t, EventWindow, WindowEvent{
		Change:    "focus",
		Container: Node{ID: 12, AppID: "org.mozilla.firefox"},
	})
	server.emit(t, EventTick, TickEvent{Payload: "appusage:idle"})
	// Unknown event types are skipped.
	server.emit(t, EventBinding, map[string]string{"change": "run"})
	server.emit(t, EventShutdown, ShutdownEvent{Change: "exit"})

	ev := <-ch
	require.Equal(t, EventWindow, ev.Type)
	require.NotNil(t, ev.Window)
	assert.Equal(t, "focus", ev.Window.Change)
	assert.Equal(t, int64(12), ev.Window.Container.ID)

	ev = <-ch
	require.Equal(t, EventTick, ev.Type)
	assert.Equal(t, "appusage:idle", ev.Tick.Payload)

	ev = <-ch
	require.Equal(t, EventShutdown, ev.Type)
	assert.Equal(t, "exit", ev.Shutdown.Change)

	cancel()
	select {
	case err := <-listenErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestListenReturnsOnConnectionLoss(t *testing.T) {
	client, server := newFakePair(t)

	ch := make(chan Event, 1)
	listenErr := make(chan error, 1)
	go func() { listenErr <- client.Listen(t.Context(), ch) }()

	require.NoError(t, server.conn.Close())

	select {
	case err := <-listenErr:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after connection loss")
	}
}
