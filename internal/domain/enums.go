// Package domain defines the core domain models for the chat relay.
package domain

// EventType is the type tag of a stream event sent to the client.
type EventType string

const (
	EventTypeMessage  EventType = "message"
	EventTypeSources  EventType = "sources"
	EventTypeUsage    EventType = "usage"
	EventTypeComplete EventType = "complete"
	EventTypeError    EventType = "error"
)

// IsTerminal reports whether the event ends a stream.
func (t EventType) IsTerminal() bool {
	return t == EventTypeComplete || t == EventTypeError
}

// ErrorCode classifies a relay failure.
type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrorCodeConfig     ErrorCode = "CONFIG_ERROR"
	ErrorCodeUpstream   ErrorCode = "UPSTREAM_ERROR"
	ErrorCodeStream     ErrorCode = "STREAM_ERROR"
	ErrorCodeInternal   ErrorCode = "INTERNAL_ERROR"
)

// RelayState represents the state of a relay.
type RelayState string

const (
	RelayStateIdle             RelayState = "IDLE"
	RelayStateAwaitingUpstream RelayState = "AWAITING_UPSTREAM"
	RelayStateEmitting         RelayState = "EMITTING"
	RelayStateDone             RelayState = "DONE"
	RelayStateErrored          RelayState = "ERRORED"
	RelayStateCancelled        RelayState = "CANCELLED"
)

// LedgerEventType represents the type of a ledger event.
type LedgerEventType string

const (
	LedgerEventRelayStarted        LedgerEventType = "relay_started"
	LedgerEventUpstreamCallStarted LedgerEventType = "upstream_call_started"
	LedgerEventUpstreamCallDone    LedgerEventType = "upstream_call_done"
	LedgerEventRelayDone           LedgerEventType = "relay_done"
	LedgerEventRelayFailed         LedgerEventType = "relay_failed"
	LedgerEventRelayCancelled      LedgerEventType = "relay_cancelled"
)
