package sway

import (
	"encoding/binary"
	"fmt"
	"io"
)

// i3-ipc frame: 6-byte magic, uint32 LE payload length, uint32 LE type,
// then the JSON payload.
var magic = []byte("i3-ipc")

const headerLen = 6 + 4 + 4

// maxPayload guards against a corrupt length field; real tree payloads are
// well under a megabyte.
const maxPayload = 16 << 20

func writeMessage(w io.Writer, t MessageType, payload []byte) error {
	buf := make([]byte, headerLen+len(payload))
	copy(buf, magic)
	binary.LittleEndian.PutUint32(buf[6:10], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[10:14], uint32(t))
	copy(buf[headerLen:], payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write ipc message: %w", err)
	}
	return nil
}

func readMessage(r io.Reader) (uint32, []byte, error) {
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, fmt.Errorf("read ipc header: %w", err)
	}
	if string(header[:6]) != string(magic) {
		return 0, nil, fmt.Errorf("bad ipc magic %q", header[:6])
	}

	length := binary.LittleEndian.Uint32(header[6:10])
	msgType := binary.LittleEndian.Uint32(header[10:14])
	if length > maxPayload {
		return 0, nil, fmt.Errorf("ipc payload of %d bytes exceeds limit", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("read ipc payload: %w", err)
	}
	return msgType, payload, nil
}

func isEvent(rawType uint32) bool {
	return rawType&uint32(eventBit) != 0
}
