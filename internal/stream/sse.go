package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

// ErrStreamingUnsupported is returned when the response writer cannot flush.
var ErrStreamingUnsupported = errors.New("streaming not supported")

// SSEEmitter writes framed events to an HTTP response and flushes each one.
type SSEEmitter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEEmitter sets the event-stream headers and commits a 200 response.
func NewSSEEmitter(w http.ResponseWriter) (*SSEEmitter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	// Intermediaries must not buffer the stream for compression.
	h.Set("Content-Encoding", "identity")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEEmitter{w: w, flusher: flusher}, nil
}

// Emit writes one record. Nothing is written once ctx is done.
func (e *SSEEmitter) Emit(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	frame, err := Frame(event)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(frame); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event.Type, err)
	}
	e.flusher.Flush()
	return nil
}
