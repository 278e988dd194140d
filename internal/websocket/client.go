package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/pkg/dialogue"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// MessageHandler answers one chat message for a session.
type MessageHandler func(ctx context.Context, sessionID, query string) (dialogue.Envelope, error)

type inboundFrame struct {
	Query string `json:"query"`
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Conversation this connection belongs to. Several tabs may share one.
	SessionID string

	// Buffered channel of outbound frames.
	Send chan []byte

	handle MessageHandler
	logger logger.ILogger
}

// readPump turns every inbound frame into a chat turn and pushes the reply to
// every connection of the same session.
func (c *Client) readPump() {
	defer func() {
		c.Hub.leave(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("HTTP", "Websocket closed unexpectedly", map[string]interface{}{
					"session_id": c.SessionID,
					"error":      err.Error(),
				})
			}
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil || strings.TrimSpace(frame.Query) == "" {
			c.reply(errorFrame("query is required"))
			continue
		}

		env, err := c.handle(context.Background(), c.SessionID, frame.Query)
		if err != nil {
			c.logger.Error("HTTP", "Websocket chat turn failed", map[string]interface{}{
				"session_id": c.SessionID,
				"error":      err.Error(),
			})
		}

		data, err := json.Marshal(env)
		if err != nil {
			c.reply(errorFrame("Internal server error"))
			continue
		}
		c.Hub.Push(c.SessionID, data)
	}
}

// reply sends a frame to this connection only.
func (c *Client) reply(data []byte) {
	c.Hub.deliver(c, data)
}

func errorFrame(message string) []byte {
	data, _ := json.Marshal(map[string]string{"error": message})
	return data
}

// writePump pumps frames from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame.
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
