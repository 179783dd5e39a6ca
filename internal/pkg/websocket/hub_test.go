package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	up := NewUpgrader(hub, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = up.Upgrade(w, r, r.URL.Query().Get("user"))
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func waitForClients(t *testing.T, hub *Hub, user string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount(user) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestNotifyUserReachesOnlyThatUser(t *testing.T) {
	hub, srv := startHub(t)
	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	waitForClients(t, hub, "alice", 1)
	waitForClients(t, hub, "bob", 1)

	hub.NotifyUser("alice", "responses", "surveys")

	msg := readMessage(t, alice)
	assert.Equal(t, MessageTypeInvalidate, msg.Type)
	assert.Equal(t, []string{"responses", "surveys"}, msg.Namespaces)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err)
}

func TestBroadcastReachesEveryone(t *testing.T) {
	hub, srv := startHub(t)
	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	waitForClients(t, hub, "alice", 1)
	waitForClients(t, hub, "bob", 1)

	hub.Broadcast("surveys")

	assert.Equal(t, []string{"surveys"}, readMessage(t, alice).Namespaces)
	assert.Equal(t, []string{"surveys"}, readMessage(t, bob).Namespaces)
}

func TestPingGetsPong(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "carol")
	waitForClients(t, hub, "carol", 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, MessageTypePong, readMessage(t, conn).Type)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://portal.example.org"})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://portal.example.org")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(r))
}

func TestPingFromDroppedClientDoesNotPanic(t *testing.T) {
	hub, srv := startHub(t)

	// no writePump: the send buffer fills up and the hub drops the client
	stalled := &Client{hub: hub, send: make(chan []byte, sendBuffer), userID: "stalled", logger: zerolog.Nop()}
	require.True(t, hub.join(stalled))
	waitForClients(t, hub, "stalled", 1)

	for i := 0; i < sendBuffer+5; i++ {
		hub.NotifyUser("stalled", "surveys")
	}
	waitForClients(t, hub, "stalled", 0)

	// what readPump does when the peer sends {"type":"ping"}
	assert.NotPanics(t, func() { hub.reply(stalled) })

	// the hub goroutine is still alive and delivering
	dave := dial(t, srv, "dave")
	waitForClients(t, hub, "dave", 1)
	require.NoError(t, dave.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, MessageTypePong, readMessage(t, dave).Type)
}
