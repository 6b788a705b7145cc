// Package retention implements the conversation retention policy.
// A background janitor periodically deletes logged exchanges older
// than the configured window.
//
// The Redis store is exempt: its conversation keys expire via TTL, so
// the janitor only runs against stores that keep conversations until
// told otherwise.
package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Pruner deletes conversations recorded before a cutoff and reports
// how many were removed.
type Pruner interface {
	PruneConversations(ctx context.Context, before time.Time) (int, error)
}

// DefaultInterval is how often a cycle runs.
const DefaultInterval = 1 * time.Hour

// Janitor periodically prunes expired conversations.
type Janitor struct {
	pruner   Pruner
	window   time.Duration
	interval time.Duration
}

// New creates a janitor. window is how long conversations are kept.
func New(pruner Pruner, window time.Duration) *Janitor {
	return &Janitor{
		pruner:   pruner,
		window:   window,
		interval: DefaultInterval,
	}
}

// WithInterval overrides the cycle interval, mainly for tests.
func (j *Janitor) WithInterval(interval time.Duration) *Janitor {
	j.interval = interval
	return j
}

// Run blocks, pruning once per interval until ctx is cancelled. An
// immediate first cycle runs on start so restarts do not postpone
// cleanup by a full interval.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.cycle(ctx)
		}
	}
}

func (j *Janitor) cycle(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.window)
	pruned, err := j.pruner.PruneConversations(ctx, cutoff)
	if err != nil {
		log.Warn().Err(err).Msg("retention cycle failed")
		return
	}
	if pruned > 0 {
		log.Info().Int("pruned", pruned).Time("cutoff", cutoff).Msg("retention cycle complete")
	}
}
