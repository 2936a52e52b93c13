package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

// WSEmitter writes each event as one JSON text message on a WebSocket.
// It must be the only writer on the connection.
type WSEmitter struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

// NewWSEmitter creates an emitter for conn. A zero writeTimeout disables the
// write deadline.
func NewWSEmitter(conn *websocket.Conn, writeTimeout time.Duration) *WSEmitter {
	return &WSEmitter{conn: conn, writeTimeout: writeTimeout}
}

func (e *WSEmitter) Emit(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if e.writeTimeout > 0 {
		if err := e.conn.SetWriteDeadline(time.Now().Add(e.writeTimeout)); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}
	if err := e.conn.WriteJSON(event); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event.Type, err)
	}
	return nil
}
