package ws

import (
	"sync"
	"testing"
	"time"

	"vapestore-pos/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (c *fakeClient) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.messages...)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(logger.NewNop())
	done := make(chan struct{})
	go hub.Run(done)

	client := &fakeClient{}
	hub.Register <- client

	hub.Publish(map[string]string{"type": "stock_update"})

	require.Eventually(t, func() bool { return len(client.received()) == 1 }, time.Second, 10*time.Millisecond)
	assert.JSONEq(t, `{"type":"stock_update"}`, string(client.received()[0]))

	close(done)
	require.Eventually(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return client.closed
	}, time.Second, 10*time.Millisecond)
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub(logger.NewNop())

	// Nobody drains the channel
	for i := 0; i < broadcastBuffer+10; i++ {
		hub.Publish(i)
	}
	assert.Len(t, hub.Broadcast, broadcastBuffer)
}
