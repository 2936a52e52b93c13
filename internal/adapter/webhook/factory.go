package webhook

import (
	"log"

	"github.com/xiaot623/gogo/chatrelay/internal/config"
)

// ModeMock selects the mock upstream.
const ModeMock = "MOCK"

// NewUpstream creates the upstream client based on cfg.Mode.
// If RELAY_MODE=MOCK, returns a MockClient; otherwise returns a real Client.
func NewUpstream(cfg *config.Config) Upstream {
	if cfg.Mode == ModeMock {
		log.Println("RELAY_MODE=MOCK detected, using mock webhook client")
		return NewMockClient()
	}

	return NewClient(cfg.WebhookURL(), cfg.WebhookAPIKey, cfg.UpstreamTimeout, cfg.UpstreamMaxBodyBytes)
}
