package notifications

import (
	"log"
	"time"

	"silenceboost/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeWait bounds a single write to the peer.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered dead. Pings go out at pingPeriod, which must be shorter.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Clients never send application payloads, only control frames.
	maxInboundSize = 512

	// sendBuffer is the per-connection outbound queue. Notifications are
	// short JSON envelopes; a slow reader past this depth gets drops.
	sendBuffer = 64
)

// dropNotice tells the client that delivery gapped so it can re-fetch
// its unread notifications over HTTP.
var dropNotice = []byte(`{"type":"notifications_dropped","payload":{"reason":"buffer_full"}}`)

// Client is one websocket connection belonging to a user. The hub may hold
// several per user (multiple tabs or devices).
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID uint

	// Send carries outbound envelopes to WritePump.
	Send chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
	}
}

// ReadPump drains the connection until it dies. The notification channel is
// push-only, so inbound frames are read solely to service pings and detect
// closure.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxInboundSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read (user %d): %v", c.UserID, err)
			}
			return
		}
	}
}

// WritePump feeds queued envelopes to the connection and keeps it alive
// with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case envelope, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, envelope); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues an envelope without blocking. When the buffer is full the
// envelope is dropped and a drop notice is queued instead, if room appears;
// a send on an already-closed channel is absorbed.
func (c *Client) TrySend(envelope []byte) {
	defer func() {
		if r := recover(); r != nil {
			middleware.WebSocketDrops.WithLabelValues(c.Hub.Name(), "closed").Inc()
		}
	}()

	select {
	case c.Send <- envelope:
		return
	default:
	}

	middleware.WebSocketDrops.WithLabelValues(c.Hub.Name(), "full").Inc()
	log.Printf("websocket send buffer full, dropping envelope (user %d)", c.UserID)

	select {
	case c.Send <- dropNotice:
	default:
	}
}
