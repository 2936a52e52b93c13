package v1

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/gogo/chatrelay/internal/domain"
	"github.com/xiaot623/gogo/chatrelay/internal/stream"
)

// SendMessage relays one chat message and streams the answer as events.
// POST /api/chat/send
//
// The response is always 200 once the stream is open; failures arrive as a
// single error event.
func (h *Handler) SendMessage(c echo.Context) error {
	emitter, err := stream.NewSSEEmitter(c.Response())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()

	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		log.Printf("WARN: invalid chat request body: %v", err)
		if err := emitter.Emit(ctx, domain.ErrorEvent(domain.ErrorCodeValidation, "Invalid request body")); err != nil {
			log.Printf("WARN: failed to send error event: %v", err)
		}
		return nil
	}

	h.service.Relay(ctx, &req, emitter)
	return nil
}
