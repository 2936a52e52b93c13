// Package repository persists the relay ledger.
package repository

import (
	"context"

	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

// Store defines the interface for ledger persistence.
type Store interface {
	// Relay operations
	CreateRelay(ctx context.Context, relay *domain.Relay) error
	GetRelay(ctx context.Context, relayID string) (*domain.Relay, error)
	UpdateRelayState(ctx context.Context, relayID string, state domain.RelayState) error
	UpdateRelayCompleted(ctx context.Context, relayID string, state domain.RelayState, code domain.ErrorCode, chunkCount int) error

	// Event operations
	CreateEvent(ctx context.Context, event *domain.LedgerEvent) error
	GetEvents(ctx context.Context, relayID string, afterTs int64, types []string, limit int) ([]domain.LedgerEvent, error)

	Close() error
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
