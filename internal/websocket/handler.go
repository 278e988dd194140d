package websocket

import (
	"flcs-chatbot-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID string, handle MessageHandler, log logger.ILogger) {
	client := &Client{
		Hub:       hub,
		Conn:      c,
		SessionID: sessionID,
		Send:      make(chan []byte, 64),
		handle:    handle,
		logger:    log,
	}
	if !hub.join(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump() // blocks the fiber handler until the peer goes away
}
