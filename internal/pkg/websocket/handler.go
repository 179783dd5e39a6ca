package websocket

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var errHubStopped = errors.New("websocket hub stopped")

// Upgrader upgrades authenticated requests into hub clients
type Upgrader struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewUpgrader creates an Upgrader. An empty allowedOrigins list accepts any origin.
func NewUpgrader(hub *Hub, allowedOrigins []string) *Upgrader {
	return &Upgrader{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		for _, a := range allowed {
			if strings.EqualFold(origin, a) {
				return true
			}
		}
		return false
	}
}

// Upgrade switches the connection to WebSocket and registers it for userID.
// On failure the upgrader has already written an HTTP error.
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:    u.hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		logger: u.hub.logger,
	}
	if !u.hub.join(client) {
		conn.Close()
		return errHubStopped
	}
	u.hub.logger.Debug().Str("userID", userID).Int("connections", u.hub.ClientCount(userID)).Msg("Realtime client joined")

	go client.writePump()
	go client.readPump()
	return nil
}
