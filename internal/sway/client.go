package sway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
)

// ErrNoSocket means neither $SWAYSOCK nor $I3SOCK is set.
var ErrNoSocket = errors.New("no sway ipc socket: neither SWAYSOCK nor I3SOCK is set")

// SocketPath discovers the compositor IPC socket from the environment.
func SocketPath() (string, error) {
	if path := os.Getenv("SWAYSOCK"); path != "" {
		return path, nil
	}
	if path := os.Getenv("I3SOCK"); path != "" {
		return path, nil
	}
	return "", ErrNoSocket
}

// Client is a connection to the compositor IPC socket.
//
// Request methods (GetTree, GetVersion, Subscribe) and Listen share one
// connection; the protocol interleaves event frames with replies, so request
// replies skip any events that arrive first. The intended use is the one the
// daemon has: issue queries and Subscribe during setup, then hand the
// connection to Listen.
type Client struct {
	conn net.Conn
	mu   sync.Mutex // serializes request/reply exchanges
}

// Dial connects to the IPC socket at path. An empty path uses SocketPath.
func Dial(path string) (*Client, error) {
	if path == "" {
		var err error
		if path, err = SocketPath(); err != nil {
			return nil, err
		}
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("dial sway socket %s: %w", path, err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection. Used by Dial and by tests.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// Close closes the underlying connection. Listen returns after Close.
func (c *Client) Close() error {
	return c.conn.Close()
}

// roundTrip sends one request and returns the payload of the next reply
// frame, skipping event frames that arrive in between.
func (c *Client) roundTrip(t MessageType, payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := writeMessage(c.conn, t, payload); err != nil {
		return nil, err
	}
	for {
		rawType, reply, err := readMessage(c.conn)
		if err != nil {
			return nil, err
		}
		if isEvent(rawType) {
			continue
		}
		if rawType != uint32(t) {
			return nil, fmt.Errorf("ipc reply type %d does not match request type %d", rawType, t)
		}
		return reply, nil
	}
}

// GetVersion queries the compositor version.
func (c *Client) GetVersion() (*Version, error) {
	reply, err := c.roundTrip(MessageGetVersion, nil)
	if err != nil {
		return nil, err
	}
	var v Version
	if err := json.Unmarshal(reply, &v); err != nil {
		return nil, fmt.Errorf("decode version reply: %w", err)
	}
	return &v, nil
}

// GetTree queries the full layout tree.
func (c *Client) GetTree() (*Node, error) {
	reply, err := c.roundTrip(MessageGetTree, nil)
	if err != nil {
		return nil, err
	}
	var root Node
	if err := json.Unmarshal(reply, &root); err != nil {
		return nil, fmt.Errorf("decode tree reply: %w", err)
	}
	return &root, nil
}

// Subscribe registers for the named events on this connection.
func (c *Client) Subscribe(events ...string) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode subscribe payload: %w", err)
	}
	reply, err := c.roundTrip(MessageSubscribe, payload)
	if err != nil {
		return err
	}
	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(reply, &result); err != nil {
		return fmt.Errorf("decode subscribe reply: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("compositor rejected subscription to %v", events)
	}
	return nil
}

// Listen reads event frames and delivers decoded events on ch until the
// context is canceled or the connection fails. Undecodable or unhandled
// frames are skipped. The channel is not closed; ownership stays with the
// caller.
func (c *Client) Listen(ctx context.Context, ch chan<- Event) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.conn.Close() // unblock the read
		case <-done:
		}
	}()

	for {
		rawType, payload, err := readMessage(c.conn)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if !isEvent(rawType) {
			continue
		}
		ev, ok, err := decodeEvent(EventType(rawType), payload)
		if err != nil || !ok {
			continue
		}
		select {
		case ch <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
