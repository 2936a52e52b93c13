package domain

import (
	"encoding/json"
	"time"
)

// Relay is the ledger record of one relay. It never holds message or answer text.
type Relay struct {
	RelayID        string     `json:"relay_id"`
	ConversationID string     `json:"conversation_id,omitempty"`
	State          RelayState `json:"state"`
	ErrorCode      ErrorCode  `json:"error_code,omitempty"`
	MessageLength  int        `json:"message_length"`
	ChunkCount     int        `json:"chunk_count"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

// LedgerEvent is a trace event of a relay.
type LedgerEvent struct {
	EventID string          `json:"event_id"`
	RelayID string          `json:"relay_id"`
	Ts      int64           `json:"ts"` // Unix milliseconds
	Type    LedgerEventType `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RelayStartedPayload is the payload for relay_started event.
type RelayStartedPayload struct {
	ConversationID string   `json:"conversation_id,omitempty"`
	MessageLength  int      `json:"message_length"`
	Settings       Settings `json:"settings"`
}

// UpstreamCallStartedPayload is the payload for upstream_call_started event.
type UpstreamCallStartedPayload struct {
	Endpoint string `json:"endpoint"`
}

// UpstreamCallDonePayload is the payload for upstream_call_done event.
type UpstreamCallDonePayload struct {
	LatencyMs     int64  `json:"latency_ms"`
	ResponseBytes int    `json:"response_bytes"`
	Error         string `json:"error,omitempty"`
}

// RelayDonePayload is the payload for relay_done event.
type RelayDonePayload struct {
	ChunkCount  int    `json:"chunk_count"`
	SourceCount int    `json:"source_count"`
	Usage       *Usage `json:"usage,omitempty"`
}

// RelayFailedPayload is the payload for relay_failed event.
type RelayFailedPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Keys    []string  `json:"keys,omitempty"`
}

// RelayCancelledPayload is the payload for relay_cancelled event.
type RelayCancelledPayload struct {
	State      RelayState `json:"state"`
	EventsSent int        `json:"events_sent"`
	Reason     string     `json:"reason"`
}
