package store

import (
	"context"
	"time"
)

// Ban is a persisted ban record. Identity is the canonical key; at most one
// record exists per identity.
type Ban struct {
	Identity string
	Name     string
	Reason   string
	BannedAt time.Time
}

// Message is a persisted chat entry.
type Message struct {
	Identity string
	Name     string
	Text     string
	System   bool
	SentAt   time.Time
}

// BanStore handles ban persistence.
type BanStore interface {
	// ListBans returns all ban records.
	ListBans(ctx context.Context) ([]Ban, error)

	// PutBan inserts or replaces the ban for its identity.
	PutBan(ctx context.Context, ban Ban) error

	// DeleteBan removes the ban for identity. Removing a missing ban is not
	// an error.
	DeleteBan(ctx context.Context, identity string) error
}

// HistoryStore handles chat history persistence.
type HistoryStore interface {
	// ListMessages returns up to limit most recent messages, oldest first.
	ListMessages(ctx context.Context, limit int) ([]Message, error)

	// AppendMessage persists msg and drops the oldest rows beyond keep.
	AppendMessage(ctx context.Context, msg Message, keep int) error

	// DeleteMessagesBy removes every message authored by identity.
	DeleteMessagesBy(ctx context.Context, identity string) error

	// DeleteAllMessages empties the history.
	DeleteAllMessages(ctx context.Context) error
}

// WordStore handles banned-word list persistence.
type WordStore interface {
	// ListWords returns the banned words in list order.
	ListWords(ctx context.Context) ([]string, error)

	// ReplaceWords overwrites the stored list with words, preserving order.
	ReplaceWords(ctx context.Context, words []string) error
}

// IdentityStore records identities the server has seen.
type IdentityStore interface {
	// RecordIdentity stores first contact for identity. Recording a known
	// identity is a no-op.
	RecordIdentity(ctx context.Context, identity string, firstSeen time.Time) error
}

// Store aggregates all storage interfaces.
type Store interface {
	BanStore
	HistoryStore
	WordStore
	IdentityStore

	// Close closes the underlying database connection.
	Close() error
}
