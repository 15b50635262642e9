// internal/messaging/hub_test.go

package messaging

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newTestHub(matches ...*MatchInfo) *Hub {
    return NewHub(newTestRegistry(matches...))
}

func TestEnqueueAfterCloseReturnsFalse(t *testing.T) {
    hub := newTestHub()
    client := NewClient(hub, nil, 1, nil)

    assert.True(t, client.Enqueue([]byte("hello")))

    client.Close()

    assert.False(t, client.Enqueue([]byte("after close")))
}

func TestClientCloseIsIdempotent(t *testing.T) {
    hub := newTestHub()
    client := NewClient(hub, nil, 1, nil)

    client.Close()
    assert.NotPanics(t, func() { client.Close() })
}

func TestUnregisterSameClientTwice(t *testing.T) {
    hub := newTestHub()
    client := NewClient(hub, nil, 1, nil)

    hub.registry.Authenticate(client, 1)
    require.True(t, hub.IsUserOnline(1))

    hub.unregisterClient(client)
    assert.NotPanics(t, func() { hub.unregisterClient(client) })
    assert.False(t, hub.IsUserOnline(1))
}

// A fan-out caller can snapshot a user's connections just before the hub's
// loop tears one of them down. Delivery into that stale snapshot must be a
// no-op, not a send on a closed channel.
func TestDeliverToStaleSnapshotAfterDisconnect(t *testing.T) {
    hub := newTestHub()
    go hub.Run()
    defer hub.Shutdown()

    client := NewClient(hub, nil, 1, nil)
    hub.registry.Authenticate(client, 1)

    snapshot := hub.registry.UserConnections(1)
    require.Len(t, snapshot, 1)

    hub.unregisterClient(client)

    assert.NotPanics(t, func() {
        hub.deliver(snapshot, WSMessage{Type: string(WSTypeTyping), Timestamp: time.Now()})
    })
    assert.False(t, client.Enqueue([]byte("late frame")))
}

func TestSlowConsumerIsDropped(t *testing.T) {
    hub := newTestHub()
    go hub.Run()
    defer hub.Shutdown()

    client := NewClient(hub, nil, 1, nil)
    hub.registry.Authenticate(client, 1)

    // Saturate the send buffer so the next delivery is refused
    for client.Enqueue([]byte("fill")) {
    }

    hub.ToUser(1, WSMessage{Type: string(WSTypeTyping), Timestamp: time.Now()})

    require.Eventually(t, func() bool {
        return !hub.IsUserOnline(1)
    }, 2*time.Second, 10*time.Millisecond)
}

func TestShutdownImmediatelyAfterRun(t *testing.T) {
    hub := newTestHub()
    go hub.Run()

    done := make(chan struct{})
    go func() {
        hub.Shutdown()
        close(done)
    }()

    select {
    case <-done:
    case <-time.After(2 * time.Second):
        t.Fatal("hub shutdown did not complete")
    }
}
