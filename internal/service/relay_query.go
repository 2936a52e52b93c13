package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

func (s *Service) GetRelay(ctx context.Context, relayID string) (*domain.Relay, error) {
	relay, err := s.store.GetRelay(ctx, relayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get relay: %w", err)
	}
	return relay, nil
}

func (s *Service) GetRelayEvents(ctx context.Context, relayID string, afterTs int64, types []string, limit int) ([]domain.LedgerEvent, error) {
	events, err := s.store.GetEvents(ctx, relayID, afterTs, types, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get relay events: %w", err)
	}
	return events, nil
}
