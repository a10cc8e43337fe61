package realtime

import (
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeDeadline  = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 64 * 1024
)

// Client is one connected websocket view. Outbound events go through a
// buffered channel; a slow consumer drops events rather than blocking the
// emitter (the next full reload recovers).
type Client struct {
	UserID  string
	IsAdmin bool

	conn *websocket.Conn
	send chan any
	done chan struct{}
}

func NewClient(userID string, isAdmin bool, conn *websocket.Conn) *Client {
	return &Client{
		UserID:  userID,
		IsAdmin: isAdmin,
		conn:    conn,
		send:    make(chan any, 256),
		done:    make(chan struct{}),
	}
}

func (c *Client) Send(msg any) {
	select {
	case c.send <- msg:
	default:
		// drop if blocked
	}
}

func (c *Client) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// ReadPump consumes the connection until it closes; inbound frames are only
// used to keep the connection alive (all writes go over HTTP).
func (c *Client) ReadPump() {
	defer c.Close()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			b, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
