// Package sway implements the client side of the i3-ipc protocol spoken by
// Sway and i3 over their control socket. Only the small surface the daemon
// needs is covered: version/tree queries, event subscription, and the event
// stream itself.
package sway

import "encoding/json"

// MessageType identifies an outgoing request on the IPC socket.
type MessageType uint32

const (
	MessageRunCommand MessageType = 0
	MessageSubscribe  MessageType = 2
	MessageGetTree    MessageType = 4
	MessageGetVersion MessageType = 7
	MessageSendTick   MessageType = 10
)

// EventType identifies an incoming event frame. Event frames have bit 31 of
// the type field set.
type EventType uint32

const (
	eventBit EventType = 0x80000000

	EventWorkspace EventType = eventBit | 0
	EventMode      EventType = eventBit | 2
	EventWindow    EventType = eventBit | 3
	EventBinding   EventType = eventBit | 5
	EventShutdown  EventType = eventBit | 6
	EventTick      EventType = eventBit | 7
)

// Event names accepted by the subscribe request.
const (
	SubscribeWindow   = "window"
	SubscribeTick     = "tick"
	SubscribeShutdown = "shutdown"
)

// Node is one node of the layout tree. Only the fields the tracker cares
// about are decoded.
type Node struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	AppID            string            `json:"app_id"`
	Focused          bool              `json:"focused"`
	WindowProperties *WindowProperties `json:"window_properties"`
	Nodes            []*Node           `json:"nodes"`
	FloatingNodes    []*Node           `json:"floating_nodes"`
}

// WindowProperties carries the X11 class for XWayland windows.
type WindowProperties struct {
	Class    string `json:"class"`
	Instance string `json:"instance"`
	Title    string `json:"title"`
}

// ResolveApp returns the best application identity for a node: the Wayland
// app_id, else the XWayland class, else the window title. Nodes with no
// identity at all resolve to "unknown".
func (n *Node) ResolveApp() string {
	if n == nil {
		return "unknown"
	}
	if n.AppID != "" {
		return n.AppID
	}
	if n.WindowProperties != nil && n.WindowProperties.Class != "" {
		return n.WindowProperties.Class
	}
	if n.Name != "" {
		return n.Name
	}
	return "unknown"
}

// FindFocused walks the tree and returns the focused leaf, or nil.
func (n *Node) FindFocused() *Node {
	if n == nil {
		return nil
	}
	if n.Focused && len(n.Nodes) == 0 && len(n.FloatingNodes) == 0 {
		return n
	}
	for _, child := range n.Nodes {
		if found := child.FindFocused(); found != nil {
			return found
		}
	}
	for _, child := range n.FloatingNodes {
		if found := child.FindFocused(); found != nil {
			return found
		}
	}
	return nil
}

// WindowEvent is a "window" event payload.
type WindowEvent struct {
	Change    string `json:"change"`
	Container Node   `json:"container"`
}

// TickEvent is a "tick" event payload. First is true for the synthetic tick
// delivered on subscription.
type TickEvent struct {
	First   bool   `json:"first"`
	Payload string `json:"payload"`
}

// ShutdownEvent is a "shutdown" event payload; Change is "exit".
type ShutdownEvent struct {
	Change string `json:"change"`
}

// Version is the reply to a GET_VERSION request.
type Version struct {
	Major                int    `json:"major"`
	Minor                int    `json:"minor"`
	Patch                int    `json:"patch"`
	HumanReadable        string `json:"human_readable"`
	LoadedConfigFileName string `json:"loaded_config_file_name"`
}

// Event is one decoded event frame. Exactly one of the payload fields is set,
// matching Type.
type Event struct {
	Type     EventType
	Window   *WindowEvent
	Tick     *TickEvent
	Shutdown *ShutdownEvent
}

func decodeEvent(t EventType, payload []byte) (Event, bool, error) {
	ev := Event{Type: t}
	switch t {
	case EventWindow:
		ev.Window = &WindowEvent{}
		if err := json.Unmarshal(payload, ev.Window); err != nil {
			return ev, false, err
		}
	case EventTick:
		ev.Tick = &TickEvent{}
		if err := json.Unmarshal(payload, ev.Tick); err != nil {
			return ev, false, err
		}
	case EventShutdown:
		ev.Shutdown = &ShutdownEvent{}
		if err := json.Unmarshal(payload, ev.Shutdown); err != nil {
			return ev, false, err
		}
	default:
		// Subscribed-but-unhandled or future event types are skipped.
		return ev, false, nil
	}
	return ev, true, nil
}
