package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeClient records everything sent to it.
type fakeClient struct {
	messages [][]byte
	closed   bool
}

func (c *fakeClient) Send(message []byte) bool {
	c.messages = append(c.messages, message)
	return true
}

func (c *fakeClient) Close() { c.closed = true }

func TestBroadcastProject_ReachesOnlySubscribers(t *testing.T) {
	hub := NewHub()
	inRoom := &fakeClient{}
	elsewhere := &fakeClient{}
	hub.Subscribe("p-1", inRoom)
	hub.Subscribe("p-2", elsewhere)

	hub.BroadcastProject("p-1", Event{Type: "task_created", ProjectID: "p-1", TaskID: "t-1"})

	require.Len(t, inRoom.messages, 1)
	require.Empty(t, elsewhere.messages)

	var evt Event
	require.NoError(t, json.Unmarshal(inRoom.messages[0], &evt))
	require.Equal(t, "task_created", evt.Type)
	require.Equal(t, "t-1", evt.TaskID)
}

func TestBroadcastUser_PrivateChannel(t *testing.T) {
	hub := NewHub()
	alice := &fakeClient{}
	bob := &fakeClient{}
	hub.Register("u-alice", alice)
	hub.Register("u-bob", bob)

	hub.BroadcastUser("u-alice", Event{Type: "notification"})

	require.Len(t, alice.messages, 1)
	require.Empty(t, bob.messages)
}

func TestUnregister_RemovesFromAllRooms(t *testing.T) {
	hub := NewHub()
	client := &fakeClient{}
	hub.Register("u-1", client)
	hub.Subscribe("p-1", client)
	hub.Subscribe("p-2", client)

	hub.Unregister(client)

	hub.BroadcastUser("u-1", Event{Type: "notification"})
	hub.BroadcastProject("p-1", Event{Type: "task_created"})
	hub.BroadcastProject("p-2", Event{Type: "task_created"})
	require.Empty(t, client.messages)
}
