package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

const (
	// Redis key prefix for per-session conversation logs.
	conversationKeyPrefix = "gf:conversations:"
	// Default TTL for conversation keys (24 hours).
	defaultConversationTTL = 24 * time.Hour
)

// RedisStore implements Store with per-session conversation lists in
// Redis. The knowledge table is static, so it is served from the
// embedded memory store rather than round-tripping through Redis.
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	knowledge *MemoryStore
}

// NewRedisStore connects to Redis using a redis:// URL.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultConversationTTL
	}

	log.Info().Dur("ttl", ttl).Msg("redis store initialized")
	return &RedisStore{client: client, ttl: ttl, knowledge: NewMemoryStore()}, nil
}

func (s *RedisStore) key(sessionID string) string {
	return conversationKeyPrefix + sessionID
}

// SaveConversation pushes the record onto the session's list and
// refreshes the list's TTL.
func (s *RedisStore) SaveConversation(ctx context.Context, rec *models.ConversationRecord) error {
	saved := *rec
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now().UTC()
	}

	val, err := json.Marshal(saved)
	if err != nil {
		return err
	}

	key := s.key(saved.SessionID)
	if err := s.client.RPush(ctx, key, val).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

func (s *RedisStore) ListConversations(ctx context.Context, sessionID string, limit int) ([]models.ConversationRecord, error) {
	vals, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]models.ConversationRecord, 0, len(vals))
	for i := len(vals) - 1; i >= 0; i-- { // newest first
		var rec models.ConversationRecord
		if err := json.Unmarshal([]byte(vals[i]), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *RedisStore) UpsertKnowledge(ctx context.Context, item *models.KnowledgeItem) error {
	return s.knowledge.UpsertKnowledge(ctx, item)
}

func (s *RedisStore) ListKnowledge(ctx context.Context, category string) ([]models.KnowledgeItem, error) {
	return s.knowledge.ListKnowledge(ctx, category)
}

func (s *RedisStore) SearchKnowledge(ctx context.Context, category, query string) ([]models.KnowledgeItem, error) {
	return s.knowledge.SearchKnowledge(ctx, category, query)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error { return s.client.Close() }
