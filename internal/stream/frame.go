// Package stream frames relay events for the event-stream transport and
// reads them back.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

// Emitter delivers events to one client, in call order.
type Emitter interface {
	Emit(ctx context.Context, event domain.Event) error
}

const (
	dataPrefix      = "data: "
	recordSeparator = "\n\n"
)

// Frame serializes an event into one `data: <json>\n\n` record.
func Frame(event domain.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(dataPrefix) + len(payload) + len(recordSeparator))
	buf.WriteString(dataPrefix)
	buf.Write(payload)
	buf.WriteString(recordSeparator)
	return buf.Bytes(), nil
}
