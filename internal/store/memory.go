package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// MemoryStore is the in-memory Store used in tests and single-node
// runs. All maps are guarded by a single RWMutex.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]models.ConversationRecord // sessionID → records, append order
	knowledge     map[string][]models.KnowledgeItem      // category → items
}

// NewMemoryStore creates a memory store pre-seeded with the built-in
// culture-fact table.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		conversations: make(map[string][]models.ConversationRecord),
		knowledge:     make(map[string][]models.KnowledgeItem),
	}
	now := time.Now().UTC()
	for _, item := range seedKnowledge {
		item.UpdatedAt = now
		s.knowledge[item.Category] = append(s.knowledge[item.Category], item)
	}
	return s
}

func (s *MemoryStore) SaveConversation(_ context.Context, rec *models.ConversationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *rec
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now().UTC()
	}
	s.conversations[saved.SessionID] = append(s.conversations[saved.SessionID], saved)
	return nil
}

func (s *MemoryStore) ListConversations(_ context.Context, sessionID string, limit int) ([]models.ConversationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.conversations[sessionID]
	out := make([]models.ConversationRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- { // newest first
		out = append(out, records[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) UpsertKnowledge(_ context.Context, item *models.KnowledgeItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *item
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = time.Now().UTC()
	}
	items := s.knowledge[saved.Category]
	for i, existing := range items {
		if existing.Title == saved.Title {
			items[i] = saved
			return nil
		}
	}
	s.knowledge[saved.Category] = append(items, saved)
	return nil
}

func (s *MemoryStore) ListKnowledge(_ context.Context, category string) ([]models.KnowledgeItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]models.KnowledgeItem(nil), s.knowledge[category]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *MemoryStore) SearchKnowledge(_ context.Context, category, query string) ([]models.KnowledgeItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.KnowledgeItem
	for cat, items := range s.knowledge {
		if category != "" && cat != category {
			continue
		}
		for _, item := range items {
			if strings.Contains(item.Title, query) || strings.Contains(item.Content, query) {
				out = append(out, item)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func (s *MemoryStore) PruneConversations(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for sessionID, records := range s.conversations {
		kept := records[:0]
		for _, rec := range records {
			if rec.CreatedAt.Before(before) {
				pruned++
				continue
			}
			kept = append(kept, rec)
		}
		if len(kept) == 0 {
			delete(s.conversations, sessionID)
		} else {
			s.conversations[sessionID] = kept
		}
	}
	return pruned, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
