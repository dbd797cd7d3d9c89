package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/config"
	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/service"
)

// Client is one WebSocket connection: a room member or a directory watcher.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	id      uuid.UUID
	roomID  string
	watcher bool
	limiter *rate.Limiter
}

// readPump pumps messages from the connection into the game service.
// Watcher frames are drained and discarded; the read loop only exists to
// detect the close.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client", c.id.String()).Msg("websocket read error")
			}
			break
		}

		if c.watcher {
			continue
		}

		if !c.limiter.Allow() {
			c.rejectFlood()
			continue
		}

		c.hub.svc.HandleMessage(c.id, data)
	}
}

// rejectFlood answers a rate-limited frame with an error event. Delivery
// goes through the hub loop like any other send; only the hub may touch
// the send queue.
func (c *Client) rejectFlood() {
	c.hub.SendToClient(c.id, service.ErrorEvent{
		Event:   service.EventError,
		RoomID:  c.roomID,
		Message: "rate limit exceeded, message dropped",
		MyID:    c.id.String(),
	})
}

// writePump pumps messages from the hub to the connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
