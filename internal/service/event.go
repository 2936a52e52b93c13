package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

// recordEvent records a ledger event. Ledger failures never reach the client.
func (s *Service) recordEvent(ctx context.Context, relayID string, eventType domain.LedgerEventType, payload interface{}) {
	if err := s.createEvent(ctx, relayID, eventType, payload); err != nil {
		log.Printf("WARN: failed to record %s event for relay %s: %v", eventType, relayID, err)
	}
}

func (s *Service) createEvent(ctx context.Context, relayID string, eventType domain.LedgerEventType, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &domain.LedgerEvent{
		EventID: "evt_" + uuid.New().String()[:8],
		RelayID: relayID,
		Ts:      time.Now().UnixMilli(),
		Type:    eventType,
		Payload: payloadBytes,
	}

	return s.store.CreateEvent(ctx, event)
}

// transition moves the relay to a non-final state.
func (s *Service) transition(ctx context.Context, relay *domain.Relay, state domain.RelayState) {
	s.debugf("relay %s: %s -> %s", relay.RelayID, relay.State, state)
	relay.State = state
	if err := s.store.UpdateRelayState(ctx, relay.RelayID, state); err != nil {
		log.Printf("WARN: failed to update relay %s state: %v", relay.RelayID, err)
	}
}

// finish moves the relay to a final state.
func (s *Service) finish(ctx context.Context, relay *domain.Relay, state domain.RelayState, code domain.ErrorCode) {
	s.debugf("relay %s: %s -> %s", relay.RelayID, relay.State, state)
	now := time.Now()
	relay.State = state
	relay.ErrorCode = code
	relay.EndedAt = &now
	if err := s.store.UpdateRelayCompleted(ctx, relay.RelayID, state, code, relay.ChunkCount); err != nil {
		log.Printf("WARN: failed to complete relay %s: %v", relay.RelayID, err)
	}
}
