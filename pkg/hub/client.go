package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10

	// Viewers only send control frames; anything larger is a misbehaving peer.
	maxInbound = 4 << 10

	sendBuffer = 64
)

// Client is one connected viewer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

func newClient(h *Hub, conn *websocket.Conn) *Client {
	return &Client{hub: h, conn: conn, send: make(chan Message, sendBuffer)}
}

// Serve attaches conn to the hub and blocks until the viewer disconnects or
// the hub stops. Call it from the websocket handler.
func Serve(h *Hub, conn *websocket.Conn) {
	c := newClient(h, conn)
	if !h.join(c) {
		conn.Close()
		return
	}
	go c.write()
	c.read()
}

// read discards inbound frames; it exists to process pongs and notice the
// peer going away.
func (c *Client) read() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInbound)
	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
	_ = extend("")
	c.conn.SetPongHandler(extend)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// write is the only goroutine that writes to conn.
func (c *Client) write() {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		var (
			kind int
			data []byte
		)
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Removed by the hub.
				kind = websocket.CloseMessage
			} else {
				kind, data = frameType(msg.Kind), msg.Data
			}
		case <-ping.C:
			kind = websocket.PingMessage
		}

		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, data); err != nil || kind == websocket.CloseMessage {
			return
		}
	}
}

func frameType(k Kind) int {
	if k == KindFrame {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}
