// Package webhook provides the client for the upstream automation webhook.
package webhook

import (
	"context"

	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

// Upstream defines the single call the relay makes per request.
type Upstream interface {
	// Send posts the request and returns the raw response body of a 2xx reply.
	Send(ctx context.Context, req *domain.UpstreamRequest) ([]byte, error)

	// Endpoint returns the resolved endpoint, or "" when it is not configured.
	Endpoint() string
}

// Ensure Client implements Upstream interface.
var _ Upstream = (*Client)(nil)
