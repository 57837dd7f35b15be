package chat

import (
	"testing"

	"github.com/aussiebroadwan/stackplate/pkg/idx"
	"github.com/aussiebroadwan/stackplate/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestBroadcast_DropsFullQueues(t *testing.T) {
	h := NewHub(Config{SendBuffer: 1}, slogx.NewDiscard())

	slow := &client{id: idx.New(), hub: h, send: make(chan []byte, 1)}
	fast := &client{id: idx.New(), hub: h, send: make(chan []byte, 8)}
	require.True(t, h.add(slow))
	require.True(t, h.add(fast))

	h.Broadcast([]byte("one"))
	h.Broadcast([]byte("two"))

	require.Equal(t, 1, h.Len())

	// the slow queue keeps what it had and is closed
	require.Equal(t, "one", string(<-slow.send))
	_, ok := <-slow.send
	require.False(t, ok)

	require.Equal(t, "one", string(<-fast.send))
	require.Equal(t, "two", string(<-fast.send))
}

func TestClose_RefusesNewClients(t *testing.T) {
	h := NewHub(Config{}, slogx.NewDiscard())
	c := &client{id: idx.New(), hub: h, send: make(chan []byte, 1)}
	require.True(t, h.add(c))

	h.Close()
	require.Zero(t, h.Len())
	_, ok := <-c.send
	require.False(t, ok)

	require.False(t, h.add(&client{send: make(chan []byte, 1)}))

	// removing an already removed client is a no-op
	h.remove(c)
}
