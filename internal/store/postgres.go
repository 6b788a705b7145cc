package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// PostgresStore implements Store on a PostgreSQL pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, migrates and seeds the knowledge table.
func NewPostgresStore(ctx context.Context, connURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connURL)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}

	log.Info().Msg("postgres store initialized")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS gf_conversations (
			id             TEXT PRIMARY KEY,
			session_id     TEXT NOT NULL,
			expert_id      TEXT NOT NULL DEFAULT '',
			user_message   TEXT NOT NULL,
			agent_response TEXT NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_gf_conversations_session
			ON gf_conversations (session_id, created_at DESC);

		CREATE TABLE IF NOT EXISTS gf_knowledge_items (
			category   TEXT NOT NULL,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (category, title)
		);
	`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return err
	}

	// Seed only missing rows so operator edits survive restarts.
	for _, item := range seedKnowledge {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO gf_knowledge_items (category, title, content)
			VALUES ($1, $2, $3)
			ON CONFLICT (category, title) DO NOTHING`,
			item.Category, item.Title, item.Content)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) SaveConversation(ctx context.Context, rec *models.ConversationRecord) error {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO gf_conversations (id, session_id, expert_id, user_message, agent_response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, rec.SessionID, rec.ExpertID, rec.UserText, rec.ReplyText, createdAt)
	return err
}

func (s *PostgresStore) ListConversations(ctx context.Context, sessionID string, limit int) ([]models.ConversationRecord, error) {
	query := `
		SELECT id, session_id, expert_id, user_message, agent_response, created_at
		FROM gf_conversations
		WHERE session_id = $1
		ORDER BY created_at DESC`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ConversationRecord
	for rows.Next() {
		var rec models.ConversationRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.ExpertID, &rec.UserText, &rec.ReplyText, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertKnowledge(ctx context.Context, item *models.KnowledgeItem) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO gf_knowledge_items (category, title, content, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (category, title) DO UPDATE
		SET content = EXCLUDED.content, updated_at = NOW()`,
		item.Category, item.Title, item.Content)
	return err
}

func (s *PostgresStore) ListKnowledge(ctx context.Context, category string) ([]models.KnowledgeItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT category, title, content, updated_at
		FROM gf_knowledge_items
		WHERE category = $1
		ORDER BY title`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKnowledge(rows)
}

func (s *PostgresStore) SearchKnowledge(ctx context.Context, category, query string) ([]models.KnowledgeItem, error) {
	sql := `
		SELECT category, title, content, updated_at
		FROM gf_knowledge_items
		WHERE (title LIKE '%' || $1 || '%' OR content LIKE '%' || $1 || '%')`
	args := []any{query}
	if category != "" {
		sql += " AND category = $2"
		args = append(args, category)
	}
	sql += " ORDER BY category, title"

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKnowledge(rows)
}

func scanKnowledge(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.KnowledgeItem, error) {
	var out []models.KnowledgeItem
	for rows.Next() {
		var item models.KnowledgeItem
		if err := rows.Scan(&item.Category, &item.Title, &item.Content, &item.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *PostgresStore) PruneConversations(ctx context.Context, before time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM gf_conversations WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
