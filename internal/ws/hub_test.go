package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubJoinAndBroadcastIsolation(t *testing.T) {
	hub := newTestHub(&fakeChatService{}, &fakeAssembler{}, &fakeGenerator{})

	aliceFirst := newTestClient(hub, 1)
	aliceSecond := newTestClient(hub, 1)
	bob := newTestClient(hub, 2)

	hub.Join(aliceFirst)
	hub.Join(aliceSecond)
	hub.Join(bob)

	hub.Broadcast(1, EventNewMessage, map[string]string{"message": "for alice"})

	assert.Len(t, drainEvents(t, aliceFirst), 1)
	assert.Len(t, drainEvents(t, aliceSecond), 1)
	assert.Empty(t, drainEvents(t, bob))
}

func TestHubBroadcastSkipsUnjoinedConnections(t *testing.T) {
	hub := newTestHub(&fakeChatService{}, &fakeAssembler{}, &fakeGenerator{})

	joined := newTestClient(hub, 1)
	unjoined := newTestClient(hub, 1)
	hub.Join(joined)

	hub.Broadcast(1, EventNewMessage, "hi")

	assert.Len(t, drainEvents(t, joined), 1)
	assert.Empty(t, drainEvents(t, unjoined))
	assert.True(t, hub.InRoom(joined))
	assert.False(t, hub.InRoom(unjoined))
}

func TestHubUnregisterLeavesRoom(t *testing.T) {
	hub := newTestHub(&fakeChatService{}, &fakeAssembler{}, &fakeGenerator{})

	client := newTestClient(hub, 1)
	hub.Join(client)
	require.Equal(t, 1, hub.ConnectionCount())

	hub.removeClient(client)

	assert.Equal(t, 0, hub.ConnectionCount())
	assert.False(t, hub.InRoom(client))

	// Delivery after teardown is silently dropped, never a panic.
	assert.NotPanics(t, func() {
		hub.Broadcast(1, EventNewMessage, "late")
		client.sendEvent(EventNewMessage, "late direct")
	})
}

func TestHubConnectionCount(t *testing.T) {
	hub := newTestHub(&fakeChatService{}, &fakeAssembler{}, &fakeGenerator{})

	first := newTestClient(hub, 1)
	second := newTestClient(hub, 2)
	assert.Equal(t, 2, hub.ConnectionCount())

	hub.removeClient(first)
	assert.Equal(t, 1, hub.ConnectionCount())
	hub.removeClient(second)
	assert.Equal(t, 0, hub.ConnectionCount())
}
