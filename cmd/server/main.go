// Guangfu agents server entry point.
//
// It provides:
//   - Themed expert personas over one LLM gateway (the persona registry)
//   - Context classification (casual chat vs professional inquiry)
//   - Keyword routing from a query to the relevant experts
//   - Multi-expert collaboration with live SSE streaming
//   - Conversation logging and a seeded culture knowledge table
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lingnanlabs/guangfu-agents/pkg/server"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("🏮 Guangfu agents server starting...")

	ctx := context.Background()
	srv, err := server.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}
	defer srv.Store.Close()
	defer srv.ShutdownFunc(ctx)

	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", srv.Port),
		Handler:     srv.Handler,
		ReadTimeout: 30 * time.Second,
		// No write timeout: collaboration streams stay open for the
		// whole discussion.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("🛑 Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info().
		Int("port", srv.Port).
		Msg("🔥 Guangfu agents server is ready")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
