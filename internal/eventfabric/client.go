package eventfabric

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a single connected player's socket, subscribed to one or
// more scopes (their sector, their team, the regions they can see, and
// "admin" for administrators). It is the per-connection counterpart to
// EverforgeWorks-Galaxies-Server's single-scope Client.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	scopes  map[string]bool
	isAdmin bool
	cursor  int64 // last durable sequence this client has seen, for replay
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a WebSocket connection, subscribes
// it to scopes, and replays any durable events after cursor before
// entering steady-state routing.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, scopes []string, isAdmin bool, cursor int64) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("eventfabric: upgrade error: %v", err)
		return
	}

	scopeSet := make(map[string]bool, len(scopes))
	for _, s := range scopes {
		scopeSet[s] = true
	}
	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, hub.outboundHighWater),
		scopes:  scopeSet,
		isAdmin: isAdmin,
		cursor:  cursor,
	}

	hub.register <- client

	if hub.store != nil {
		client.replay(r.Context())
	}

	go client.writePump()
	go client.readPump()
}

// replay resends the durable events the client missed across its
// subscribed scopes, in sequence order, before live routing begins.
// Events that do not fit in the client's send buffer are dropped.
func (c *Client) replay(ctx context.Context) {
	for scope := range c.scopes {
		events, err := c.hub.store.Since(ctx, scope, c.cursor)
		if err != nil {
			log.Printf("eventfabric: replay error for scope %s: %v", scope, err)
			continue
		}
		for _, e := range events {
			data, err := marshalStored(e)
			if err != nil {
				continue
			}
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("eventfabric: read error: %v", err)
			}
			break
		}
		// Inbound client traffic is heartbeat/keepalive only: every
		// authoritative mutation goes through the HTTP API, never the socket.
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
