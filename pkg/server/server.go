// Package server provides the public entry point for initializing the
// Guangfu agents server.
//
// This package exists in pkg/ (not internal/) so that deployments can
// compose the server with their own middleware:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lingnanlabs/guangfu-agents/internal/api"
	"github.com/lingnanlabs/guangfu-agents/internal/api/handlers"
	"github.com/lingnanlabs/guangfu-agents/internal/classifier"
	"github.com/lingnanlabs/guangfu-agents/internal/collab"
	"github.com/lingnanlabs/guangfu-agents/internal/config"
	"github.com/lingnanlabs/guangfu-agents/internal/experts"
	"github.com/lingnanlabs/guangfu-agents/internal/llm"
	"github.com/lingnanlabs/guangfu-agents/internal/retention"
	"github.com/lingnanlabs/guangfu-agents/internal/store"
	"github.com/lingnanlabs/guangfu-agents/internal/telemetry"
)

// Server holds the initialized Guangfu agents service.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the conversation and knowledge store.
	Store store.Store

	// Config is the loaded server configuration.
	Config *config.Config

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from the environment and returns a
// ready Server.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the server with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	dataStore, err := newStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	log.Info().Str("driver", cfg.Store.Driver).Msg("✅ Store initialized")

	gateway := llm.NewClient(cfg.LLM)
	log.Info().Str("model", cfg.LLM.Model).Msg("✅ LLM gateway initialized")

	// The classifier scores against each persona's keyword set and the
	// registry hands the classifier to each persona, so the two are
	// wired through a late-bound lookup. The closure only runs per
	// request, well after the registry exists.
	var registry *experts.Registry
	cls := classifier.New(func(domainID string) []string {
		return registry.PersonaKeywords(domainID)
	})

	registry = experts.NewRegistry(experts.AgentDeps{
		LLM:         gateway,
		Classify:    cls.Classify,
		Retrieve:    knowledgeRetriever(dataStore),
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	ambassador := experts.NewAmbassador(gateway)
	orchestrator := collab.New(registry, ambassador)

	log.Info().Int("experts", len(registry.Profiles())).Msg("✅ Expert registry initialized")
	log.Info().Msg("✅ Collaboration orchestrator initialized")

	h := handlers.New(dataStore, registry, ambassador, orchestrator)
	router := api.NewRouter(cfg, h)

	shutdown = startJanitor(cfg.Store, dataStore, shutdown)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Config:       cfg,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}

// startJanitor runs the conversation retention janitor when the store
// supports pruning. Redis expires its keys on its own and the memory
// and postgres stores keep rows until pruned.
func startJanitor(cfg config.StoreConfig, dataStore store.Store, shutdown func(context.Context) error) func(context.Context) error {
	pruner, ok := dataStore.(retention.Pruner)
	if !ok || cfg.Retention <= 0 {
		return shutdown
	}

	janitorCtx, cancel := context.WithCancel(context.Background())
	go retention.New(pruner, cfg.Retention).Run(janitorCtx)
	log.Info().Dur("window", cfg.Retention).Msg("✅ Retention janitor started")

	return func(ctx context.Context) error {
		cancel()
		return shutdown(ctx)
	}
}

func newStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.PostgresURL)
	case "redis":
		return store.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisTTL)
	case "", "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// knowledgeRetriever builds the per-persona knowledge lookup: facts
// from the persona's category whose title appears in the query, or the
// category fallback when nothing specific matches.
func knowledgeRetriever(s store.Store) experts.RetrieveFunc {
	return func(ctx context.Context, domainID, query string) string {
		items, err := s.ListKnowledge(ctx, domainID)
		if err != nil {
			log.Warn().Err(err).Str("domain", domainID).Msg("knowledge lookup failed")
			return store.DomainFallback(domainID)
		}

		var hits []string
		for _, item := range items {
			if strings.Contains(query, item.Title) {
				hits = append(hits, item.Content)
			}
		}
		if len(hits) > 0 {
			return strings.Join(hits, "\n")
		}
		return store.DomainFallback(domainID)
	}
}
