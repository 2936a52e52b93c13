package domain

import (
	"fmt"
	"strings"
)

// ChatRequest is the inbound request from the UI.
type ChatRequest struct {
	Message        string             `json:"message"`
	ConversationID *string            `json:"conversationId,omitempty"`
	Settings       *RequestedSettings `json:"settings,omitempty"`
}

// RequestedSettings holds the optional settings sent by the client.
type RequestedSettings struct {
	TopK        *int     `json:"topK,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Settings are the resolved generation settings forwarded upstream.
type Settings struct {
	TopK        int     `json:"topK"`
	Temperature float64 `json:"temperature"`
}

// Validate checks the bounds of resolved settings.
func (s Settings) Validate() error {
	if s.TopK < 1 {
		return fmt.Errorf("topK must be >= 1, got %d", s.TopK)
	}
	if s.Temperature < 0 || s.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %g", s.Temperature)
	}
	return nil
}

// ResolveSettings applies defaults to any setting the client left out.
func (r *ChatRequest) ResolveSettings(defaults Settings) Settings {
	resolved := defaults
	if r.Settings == nil {
		return resolved
	}
	if r.Settings.TopK != nil {
		resolved.TopK = *r.Settings.TopK
	}
	if r.Settings.Temperature != nil {
		resolved.Temperature = *r.Settings.Temperature
	}
	return resolved
}

// HasMessage reports whether the message has any non-whitespace content.
func (r *ChatRequest) HasMessage() bool {
	return strings.TrimSpace(r.Message) != ""
}

// ConversationIDValue returns the conversation id or "".
func (r *ChatRequest) ConversationIDValue() string {
	if r.ConversationID == nil {
		return ""
	}
	return *r.ConversationID
}

// UpstreamRequest is the body posted to the webhook.
type UpstreamRequest struct {
	ChatInput   string  `json:"chatInput"`
	TopK        int     `json:"topK"`
	Temperature float64 `json:"temperature"`
}

// NewUpstreamRequest builds the webhook body from a message and resolved settings.
func NewUpstreamRequest(message string, settings Settings) *UpstreamRequest {
	return &UpstreamRequest{
		ChatInput:   message,
		TopK:        settings.TopK,
		Temperature: settings.Temperature,
	}
}
