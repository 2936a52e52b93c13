// Package service implements the relay: validate, call the webhook once,
// chunk the answer and emit it as ordered stream events.
package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/xiaot623/gogo/chatrelay/internal/adapter/webhook"
	"github.com/xiaot623/gogo/chatrelay/internal/chunk"
	"github.com/xiaot623/gogo/chatrelay/internal/config"
	"github.com/xiaot623/gogo/chatrelay/internal/domain"
	"github.com/xiaot623/gogo/chatrelay/internal/repository"
	"github.com/xiaot623/gogo/chatrelay/policy"
)

type Service struct {
	store        repository.Store
	upstream     webhook.Upstream
	config       *config.Config
	policyEngine *policy.Engine
	chunker      *chunk.Chunker
}

// New creates the relay service. policyEngine may be nil, which disables
// admission checks.
func New(store repository.Store, upstream webhook.Upstream, cfg *config.Config, policyEngine *policy.Engine) (*Service, error) {
	chunker, err := chunk.New(cfg.ChunkMin, cfg.ChunkMax)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}
	return &Service{
		store:        store,
		upstream:     upstream,
		config:       cfg,
		policyEngine: policyEngine,
		chunker:      chunker,
	}, nil
}

func (s *Service) defaultSettings() domain.Settings {
	return domain.Settings{
		TopK:        s.config.DefaultTopK,
		Temperature: s.config.DefaultTemperature,
	}
}

func (s *Service) debugf(format string, args ...interface{}) {
	if strings.EqualFold(s.config.LogLevel, "debug") {
		log.Printf("DEBUG: "+format, args...)
	}
}
