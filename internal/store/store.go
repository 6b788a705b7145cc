// Package store provides the storage interface and implementations for
// conversation logs and the cultural knowledge base. The in-memory
// store serves tests and single-node runs; PostgreSQL and Redis back
// production deployments.
package store

import (
	"context"

	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// ConversationStore logs user/assistant exchanges per session.
// Persistence is best-effort: callers log failures and move on.
type ConversationStore interface {
	SaveConversation(ctx context.Context, rec *models.ConversationRecord) error

	// ListConversations returns a session's records, newest first,
	// capped at limit (0 means no cap).
	ListConversations(ctx context.Context, sessionID string, limit int) ([]models.ConversationRecord, error)
}

// KnowledgeStore holds the static culture-fact lookup table, keyed by
// category and title.
type KnowledgeStore interface {
	UpsertKnowledge(ctx context.Context, item *models.KnowledgeItem) error

	// ListKnowledge returns a category's items ordered by title.
	ListKnowledge(ctx context.Context, category string) ([]models.KnowledgeItem, error)

	// SearchKnowledge returns items whose title or content contains
	// query. An empty category searches all categories.
	SearchKnowledge(ctx context.Context, category, query string) ([]models.KnowledgeItem, error)
}

// Store is the aggregate storage interface handler code depends on.
type Store interface {
	ConversationStore
	KnowledgeStore

	// Ping checks if the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}
