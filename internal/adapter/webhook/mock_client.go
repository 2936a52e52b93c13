package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

// MockClient is a mock implementation of Upstream for local runs and tests.
type MockClient struct{}

// NewMockClient creates a new mock webhook client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements Upstream interface.
var _ Upstream = (*MockClient)(nil)

// Endpoint returns a placeholder so the relay treats the mock as configured.
func (m *MockClient) Endpoint() string {
	return "mock://webhook"
}

// Send returns a canned payload built from the request.
func (m *MockClient) Send(ctx context.Context, req *domain.UpstreamRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"output": fmt.Sprintf("[MOCK] Received your message: %q (topK=%d, temperature=%.2f). This is a mock response.",
			truncate(req.ChatInput, 100), req.TopK, req.Temperature),
		"sources": []domain.Source{
			{Title: "Mock document", URL: "https://example.com/mock", Snippet: "Mock snippet"},
		},
		"usage": map[string]int{
			"tokensInput":  len(req.ChatInput) / 4,
			"tokensOutput": 16,
		},
	}
	return json.Marshal(payload)
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
