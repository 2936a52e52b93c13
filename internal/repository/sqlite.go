package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS relays (
			relay_id TEXT PRIMARY KEY,
			conversation_id TEXT,
			state TEXT NOT NULL,
			error_code TEXT,
			message_length INTEGER NOT NULL DEFAULT 0,
			chunk_count INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relays_conversation ON relays(conversation_id, started_at)`,
		`CREATE TABLE IF NOT EXISTS relay_events (
			event_id TEXT PRIMARY KEY,
			relay_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			type TEXT NOT NULL,
			payload TEXT,
			FOREIGN KEY (relay_id) REFERENCES relays(relay_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relay_events_relay ON relay_events(relay_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRelay creates a new relay record.
func (s *SQLiteStore) CreateRelay(ctx context.Context, relay *domain.Relay) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO relays (relay_id, conversation_id, state, message_length, started_at) VALUES (?, ?, ?, ?, ?)`,
		relay.RelayID, nullString(relay.ConversationID), relay.State, relay.MessageLength, relay.StartedAt)
	return err
}

// GetRelay retrieves a relay by ID. It returns nil, nil when not found.
func (s *SQLiteStore) GetRelay(ctx context.Context, relayID string) (*domain.Relay, error) {
	var relay domain.Relay
	var conversationID, errorCode sql.NullString
	var endedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT relay_id, conversation_id, state, error_code, message_length, chunk_count, started_at, ended_at FROM relays WHERE relay_id = ?`,
		relayID).Scan(&relay.RelayID, &conversationID, &relay.State, &errorCode, &relay.MessageLength, &relay.ChunkCount, &relay.StartedAt, &endedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if conversationID.Valid {
		relay.ConversationID = conversationID.String
	}
	if errorCode.Valid {
		relay.ErrorCode = domain.ErrorCode(errorCode.String)
	}
	if endedAt.Valid {
		relay.EndedAt = &endedAt.Time
	}
	return &relay, nil
}

// UpdateRelayState updates the state of a relay.
func (s *SQLiteStore) UpdateRelayState(ctx context.Context, relayID string, state domain.RelayState) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE relays SET state = ? WHERE relay_id = ?`,
		state, relayID)
	return err
}

// UpdateRelayCompleted moves a relay to a final state.
func (s *SQLiteStore) UpdateRelayCompleted(ctx context.Context, relayID string, state domain.RelayState, code domain.ErrorCode, chunkCount int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE relays SET state = ?, error_code = ?, chunk_count = ?, ended_at = ? WHERE relay_id = ?`,
		state, nullString(string(code)), chunkCount, time.Now(), relayID)
	return err
}

// CreateEvent creates a new ledger event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *domain.LedgerEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO relay_events (event_id, relay_id, ts, type, payload) VALUES (?, ?, ?, ?, ?)`,
		event.EventID, event.RelayID, event.Ts, event.Type, nullStringBytes(event.Payload))
	return err
}

// GetEvents retrieves events for a relay.
func (s *SQLiteStore) GetEvents(ctx context.Context, relayID string, afterTs int64, types []string, limit int) ([]domain.LedgerEvent, error) {
	query := `SELECT event_id, relay_id, ts, type, payload FROM relay_events WHERE relay_id = ?`
	args := []interface{}{relayID}

	if afterTs > 0 {
		query += ` AND ts > ?`
		args = append(args, afterTs)
	}

	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			placeholders[i] = "?"
			args = append(args, t)
		}
		query += fmt.Sprintf(" AND type IN (%s)", strings.Join(placeholders, ","))
	}

	query += ` ORDER BY ts ASC, rowid ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.LedgerEvent
	for rows.Next() {
		var event domain.LedgerEvent
		var payload sql.NullString
		if err := rows.Scan(&event.EventID, &event.RelayID, &event.Ts, &event.Type, &payload); err != nil {
			return nil, err
		}
		if payload.Valid {
			event.Payload = json.RawMessage(payload.String)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringBytes(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
