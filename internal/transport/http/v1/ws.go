package v1

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/xiaot623/gogo/chatrelay/internal/domain"
	"github.com/xiaot623/gogo/chatrelay/internal/stream"
)

// requestBacklog bounds how many chat requests may queue behind the running relay.
const requestBacklog = 8

// ChatWebSocket relays chat requests received over a WebSocket.
// GET /api/chat/ws
//
// Each inbound text message is one chat request. Requests on a connection are
// relayed one at a time, and each event goes out as its own message. Closing
// the connection cancels the running relay.
func (h *Handler) ChatWebSocket(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.Printf("WARN: failed to upgrade WebSocket: %v", err)
		return nil
	}
	defer ws.Close()

	if h.config.WSMaxMessageSize > 0 {
		ws.SetReadLimit(h.config.WSMaxMessageSize)
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	requests := make(chan []byte, requestBacklog)
	go readRequests(ctx, cancel, ws, requests)

	emitter := stream.NewWSEmitter(ws, h.config.WSWriteTimeout)
	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-requests:
			var req domain.ChatRequest
			if err := json.Unmarshal(data, &req); err != nil {
				log.Printf("WARN: invalid WebSocket chat request: %v", err)
				if err := emitter.Emit(ctx, domain.ErrorEvent(domain.ErrorCodeValidation, "Invalid request body")); err != nil {
					return nil
				}
				continue
			}
			h.service.Relay(ctx, &req, emitter)
		}
	}
}

// readRequests reads until the connection fails, then cancels ctx.
func readRequests(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn, requests chan<- []byte) {
	defer cancel()
	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WARN: WebSocket read error: %v", err)
			}
			return
		}
		select {
		case requests <- message:
		case <-ctx.Done():
			return
		}
	}
}
