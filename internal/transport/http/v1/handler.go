// Package v1 provides the HTTP handlers of the chat relay.
package v1

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/xiaot623/gogo/chatrelay/internal/config"
	"github.com/xiaot623/gogo/chatrelay/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service  *service.Service
	config   *config.Config
	upgrader websocket.Upgrader
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service, cfg *config.Config) *Handler {
	return &Handler{
		service: service,
		config:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Same policy as the CORS middleware: any origin.
				return true
			},
		},
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Chat API
	e.POST("/api/chat/send", h.SendMessage)
	e.GET("/api/chat/ws", h.ChatWebSocket)

	// Ledger API
	e.GET("/v1/relays/:relay_id", h.GetRelay)
	e.GET("/v1/relays/:relay_id/events", h.GetRelayEvents)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
