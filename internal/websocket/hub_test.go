package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient создает клиента без соединения: hub работает только с каналом send
func newTestClient(hub *Hub, userID string, buffer int) *Client {
	cfg := DefaultClientConfig()
	cfg.BufferSize = buffer
	return NewClient(hub, nil, userID, cfg)
}

func TestHub_SendToUserReachesAllConnections(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub, "u1", 4)
	b := newTestClient(hub, "u1", 4)
	other := newTestClient(hub, "u2", 4)
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)

	assert.Equal(t, 3, hub.ClientCount())
	assert.Equal(t, 2, hub.UserConnections("u1"))

	assert.True(t, hub.SendToUser("u1", []byte("hello")))
	assert.Equal(t, []byte("hello"), <-a.send)
	assert.Equal(t, []byte("hello"), <-b.send)
	assert.Len(t, other.send, 0)
}

func TestHub_SendToUnknownUser(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.SendToUser("nobody", []byte("x")))
}

func TestHub_UnregisterClosesSendOnce(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, "u1", 1)
	hub.Register(c)

	hub.Unregister(c)
	hub.Unregister(c)

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.SendToUser("u1", []byte("x")))
}

func TestHub_FullBufferDropsClient(t *testing.T) {
	hub := NewHub()
	slow := newTestClient(hub, "u1", 1)
	fast := newTestClient(hub, "u1", 8)
	hub.Register(slow)
	hub.Register(fast)

	require.True(t, hub.SendToUser("u1", []byte("1")))
	require.True(t, hub.SendToUser("u1", []byte("2")))

	assert.Equal(t, 1, hub.UserConnections("u1"))
	assert.True(t, slow.sendClosed.Load())
	assert.Len(t, fast.send, 2)
}

func TestHub_SendJSONToUser(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, "u1", 1)
	hub.Register(c)

	require.NoError(t, hub.SendJSONToUser("u1", Event{Type: PONG}))

	var got Event
	require.NoError(t, json.Unmarshal(<-c.send, &got))
	assert.Equal(t, PONG, got.Type)
}

func TestHub_Close(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, "u1", 1)
	hub.Register(c)

	hub.Close()

	assert.Equal(t, 0, hub.ClientCount())
	assert.True(t, c.sendClosed.Load())
}
