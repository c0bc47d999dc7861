// Package server exposes the chatbot over HTTP: a REST chat endpoint, a
// websocket endpoint for interactive clients, a health check and a metrics
// endpoint.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/xhad/cdpchat/pkg/chatbot"
)

const fallbackResponse = "I'm sorry, something went wrong while processing your question. Please try again."

type Config struct {
	Host string
	Port int
}

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type ChatPayload struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Response       ChatPayload `json:"response"`
	ConversationID string      `json:"conversation_id"`
	MessageID      string      `json:"message_id"`
}

type Server struct {
	config  Config
	bot     *chatbot.Chatbot
	metrics *Metrics
	logger  *slog.Logger
	echo    *echo.Echo
}

func New(config Config, bot *chatbot.Chatbot, logger *slog.Logger) *Server {
	if config.Host == "" {
		config.Host = "0.0.0.0"
	}
	if config.Port == 0 {
		config.Port = 5000
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  config,
		bot:     bot,
		metrics: NewMetrics(),
		logger:  logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	e.POST("/chat", s.handleChat)
	e.GET("/ws", s.handleWebSocket)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	s.echo = e
	return s
}

func (s *Server) handleChat(c echo.Context) (err error) {
	start := time.Now()

	var req ChatRequest
	if bindErr := c.Bind(&req); bindErr != nil || req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "message is required",
		})
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	// Any failure inside the pipeline degrades to a fixed fallback text; the
	// caller never sees internal error detail.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("chat pipeline panic", "panic", r, "conversation_id", conversationID)
			s.metrics.ObserveQuery("panic", time.Since(start))
			err = c.JSON(http.StatusInternalServerError, ChatResponse{
				Response:       ChatPayload{Type: "text", Content: fallbackResponse},
				ConversationID: conversationID,
				MessageID:      uuid.NewString(),
			})
		}
	}()

	resp := s.bot.Ask(c.Request().Context(), req.Message)
	s.metrics.ObserveQuery(resp.Type, time.Since(start))

	return c.JSON(http.StatusOK, ChatResponse{
		Response:       ChatPayload{Type: "text", Content: resp.Message},
		ConversationID: conversationID,
		MessageID:      uuid.NewString(),
	})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting server", "addr", addr)
	return s.echo.Start(addr)
}
