package websocket

import (
	"testing"
	"time"

	"finops-copilot-be/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func registerAndWait(t *testing.T, hub *Hub, client *Client) {
	t.Helper()
	hub.register <- client
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[client.OwnerID]) > 0
	}, time.Second, 5*time.Millisecond)
}

func TestHubSendDeliversToOwner(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	client := &Client{Hub: hub, OwnerID: "owner-a", Send: make(chan []byte, 1)}
	registerAndWait(t, hub, client)

	hub.Send("owner-a", dto.NotificationDTO{Type: "analysis.completed", Title: "Analysis ready"})

	select {
	case frame := <-client.Send:
		assert.Contains(t, string(frame), "analysis.completed")
	case <-time.After(time.Second):
		t.Fatal("no frame delivered to the owner's client")
	}
}

func TestHubSendSkipsForeignOwner(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	client := &Client{Hub: hub, OwnerID: "owner-a", Send: make(chan []byte, 1)}
	registerAndWait(t, hub, client)

	hub.Send("owner-b", dto.NotificationDTO{Type: "analysis.completed"})

	select {
	case <-client.Send:
		t.Fatal("frame delivered across owners")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSendFullBufferUnregistersOnce(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	// An undrained channel forces the slow-client branch immediately. A
	// panic in the Run goroutine would fail the whole test process.
	client := &Client{Hub: hub, OwnerID: "owner-a", Send: make(chan []byte)}
	registerAndWait(t, hub, client)

	hub.Send("owner-a", dto.NotificationDTO{Type: "thread.deleted"})

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, ok := hub.clients["owner-a"]
		return !ok
	}, time.Second, 5*time.Millisecond)

	// The unregister handler holds the only close of the channel.
	_, open := <-client.Send
	assert.False(t, open)

	// A later send to the same owner is a no-op, not a second close.
	hub.Send("owner-a", dto.NotificationDTO{Type: "thread.deleted"})
}
