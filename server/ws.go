package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

type wsMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// handleWebSocket serves interactive clients: each incoming message is one
// question, each outgoing message one answer. The connection is closed when
// the client disconnects or a read fails.
func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			s.logger.Info("websocket closed", "error", err)
			return nil
		}

		start := time.Now()
		resp := s.bot.Ask(ctx, msg.Content)
		s.metrics.ObserveQuery(resp.Type, time.Since(start))

		if err := conn.WriteJSON(wsMessage{Type: "response", Content: resp.Message}); err != nil {
			s.logger.Error("websocket write failed", "error", err)
			return nil
		}
	}
}
