package domain

// Event is the envelope of every record sent to the client.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// MessageEventData is the data for a message event.
type MessageEventData struct {
	Content string `json:"content"`
}

// SourcesEventData is the data for a sources event.
type SourcesEventData struct {
	Sources []Source `json:"sources"`
}

// UsageEventData is the data for a usage event.
type UsageEventData struct {
	Usage Usage `json:"usage"`
}

// CompleteEventData is the data for a complete event.
type CompleteEventData struct {
	OK bool `json:"ok"`
}

// ErrorEventData is the data for an error event.
type ErrorEventData struct {
	Message string    `json:"message"`
	Code    ErrorCode `json:"code"`
}

func MessageEvent(content string) Event {
	return Event{Type: EventTypeMessage, Data: MessageEventData{Content: content}}
}

func SourcesEvent(sources []Source) Event {
	return Event{Type: EventTypeSources, Data: SourcesEventData{Sources: sources}}
}

func UsageEvent(usage Usage) Event {
	return Event{Type: EventTypeUsage, Data: UsageEventData{Usage: usage}}
}

func CompleteEvent() Event {
	return Event{Type: EventTypeComplete, Data: CompleteEventData{OK: true}}
}

func ErrorEvent(code ErrorCode, message string) Event {
	return Event{Type: EventTypeError, Data: ErrorEventData{Message: message, Code: code}}
}
