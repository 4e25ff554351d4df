package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatly-service/internal/models"
)

func TestJoinAndLeaveRoomCounts(t *testing.T) {
	hub := NewHub()

	hub.Join("alice", nil, ConnInfo{UserID: "alice"})
	assert.Equal(t, 1, hub.RoomSize("alice"))

	// Re-joining the same connection does not grow the room.
	hub.Join("alice", nil, ConnInfo{UserID: "alice"})
	assert.Equal(t, 1, hub.RoomSize("alice"))

	hub.Leave("alice", nil)
	assert.Equal(t, 0, hub.RoomSize("alice"))
}

func TestLeaveUnknownRoom(t *testing.T) {
	hub := NewHub()
	hub.Leave("nobody", nil)
	assert.Equal(t, 0, hub.RoomSize("nobody"))
}

func TestEmitEmptyRoomIsSilentDrop(t *testing.T) {
	hub := NewHub()
	hub.Emit("nobody", models.EventReceiveMessage, models.MessageEvent{Body: "lost"})
}

func TestEmitDeliversToJoinedConnection(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Join("bob", conn, ConnInfo{UserID: "bob"})
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool {
		return hub.RoomSize("bob") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Emit("bob", models.EventReceiveMessage, models.MessageEvent{
		SenderID:   "alice",
		ReceiverID: "bob",
		Body:       "hello",
	})

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, payload, err := client.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Name string              `json:"event"`
		Data models.MessageEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, models.EventReceiveMessage, event.Name)
	assert.Equal(t, "hello", event.Data.Body)
	assert.Equal(t, "alice", event.Data.SenderID)
}

func TestEmitPrunesDeadConnections(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}

	joined := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Join("carol", conn, ConnInfo{UserID: "carol"})
		joined <- conn
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	serverConn := <-joined
	require.Equal(t, 1, hub.RoomSize("carol"))

	// Kill the transport under the hub, then emit into it.
	serverConn.Close()
	client.Close()

	hub.Emit("carol", models.EventChatReset, models.ChatResetEvent{OtherUserID: "alice"})
	assert.Equal(t, 0, hub.RoomSize("carol"))
}
