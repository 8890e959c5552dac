package sway

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`["window","tick"]`)

	require.NoError(t, writeMessage(&buf, MessageSubscribe, payload))

	rawType, got, err := readMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(MessageSubscribe), rawType)
	assert.Equal(t, payload, got)
}

func TestCodecEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMessage(&buf, MessageGetTree, nil))

	rawType, got, err := readMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(MessageGetTree), rawType)
	assert.Empty(t, got)
}

func TestReadMessageBadMagic(t *testing.T) {
	frame := make([]byte, headerLen)
	copy(frame, "not-it")

	_, _, err := readMessage(bytes.NewReader(frame))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")
}

func TestReadMessageOversizedPayloadRejected(t *testing.T) {
	frame := make([]byte, headerLen)
	copy(frame, magic)
	binary.LittleEndian.PutUint32(frame[6:10], maxPayload+1)

	_, _, err := readMessage(bytes.NewReader(frame))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestReadMessageShortRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMessage(&buf, MessageGetTree, []byte("{}")))
	truncated := buf.Bytes()[:buf.Len()-1]

	_, _, err := readMessage(bytes.NewReader(truncated))
	require.Error(t, err)
}

func TestIsEvent(t *testing.T) {
	assert.True(t, isEvent(uint32(EventWindow)))
	assert.True(t, isEvent(uint32(EventTick)))
	assert.False(t, isEvent(uint32(MessageSubscribe)))
	assert.False(t, isEvent(uint32(MessageGetTree)))
}
