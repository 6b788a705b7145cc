// Package collab runs the five-phase collaboration protocol: the
// ambassador opens, the router selects experts, each expert answers in
// registry order, experts react to each other, and the ambassador
// closes with a summary. Phases are strictly sequential; personas are
// never invoked concurrently, which is what keeps the event stream's
// start/chunk/done brackets from interleaving.
package collab

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lingnanlabs/guangfu-agents/internal/experts"
	"github.com/lingnanlabs/guangfu-agents/internal/llm"
	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// expertApology is the phase-3 substitute when a persona call panics.
const expertApology = "抱歉，专家暂时无法回应，请稍后再试。"

// streamErrorMessage is the terminal error event's payload.
const streamErrorMessage = "抱歉，讨论过程中出现了问题"

// Orchestrator drives collaboration rounds over the expert registry
// and the ambassador persona.
type Orchestrator struct {
	registry   *experts.Registry
	ambassador *experts.Ambassador
}

// New creates an orchestrator.
func New(registry *experts.Registry, ambassador *experts.Ambassador) *Orchestrator {
	return &Orchestrator{registry: registry, ambassador: ambassador}
}

// Collaborate runs one buffered round and returns the aggregate
// session. The summary phase always runs in aggregate mode.
func (o *Orchestrator) Collaborate(ctx context.Context, query string) *models.CollaborationSession {
	return o.run(ctx, query, nil, true)
}

// Stream runs one round, emitting framed events on the returned
// channel. The channel closes after discussion_complete (or after a
// single error event). Cancelling ctx stops production at the next
// fragment boundary.
func (o *Orchestrator) Stream(ctx context.Context, query string) <-chan models.StreamEvent {
	out := make(chan models.StreamEvent)
	go func() {
		defer close(out)
		emit := func(ev models.StreamEvent) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}
		o.run(ctx, query, emit, false)
	}()
	return out
}

// run is the shared phase machine. emit is nil in aggregate mode.
// summarizeAlways forces phase 5 even for a single expert; streaming
// mode summarizes only multi-expert rounds.
func (o *Orchestrator) run(ctx context.Context, query string, emit func(models.StreamEvent) bool, summarizeAlways bool) (session *models.CollaborationSession) {
	if emit == nil {
		emit = func(models.StreamEvent) bool { return true }
	}

	session = &models.CollaborationSession{
		Query:           query,
		ExpertResponses: make(map[string]string),
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("collaboration round failed")
			emit(models.StreamEvent{Type: models.EventError, Message: streamErrorMessage})
		}
	}()

	ambassadorName := o.ambassador.Profile.DisplayName

	// Phase 1: ambassador opens.
	if !emit(models.StreamEvent{Type: models.EventExpertStart, Expert: ambassadorName}) {
		return session
	}
	var initial strings.Builder
	for fragment := range o.ambassador.InitialResponseStream(ctx, query) {
		// Whitespace-only fragments are kept in the buffered text but
		// not emitted as chunks.
		initial.WriteString(fragment)
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		if !emit(models.StreamEvent{Type: models.EventChunk, Expert: ambassadorName, Content: fragment}) {
			return session
		}
	}
	session.AmbassadorInitial = initial.String()
	if !emit(models.StreamEvent{Type: models.EventExpertDone, Expert: ambassadorName}) {
		return session
	}

	// Phase 2: route.
	session.SelectedExpertIDs = o.registry.Route(query)
	session.Participants = append(session.Participants, ambassadorName)

	// Phase 3: expert responses, registry order. A failing expert gets
	// an apology slot; the loop always continues.
	for _, id := range session.SelectedExpertIDs {
		agent := o.registry.Agent(id)
		if agent == nil {
			continue
		}
		name := agent.Profile.DisplayName
		session.Participants = append(session.Participants, name)

		if !emit(models.StreamEvent{Type: models.EventExpertStart, Expert: name}) {
			return session
		}
		response, delivered := o.expertResponse(ctx, agent, query, name, emit)
		session.ExpertResponses[id] = response
		if !delivered {
			return session
		}
		if !emit(models.StreamEvent{Type: models.EventExpertDone, Expert: name}) {
			return session
		}
	}

	// Phase 4: peer interaction, only with two or more responses.
	// Empty reactions are dropped and failures swallowed.
	if len(session.ExpertResponses) >= 2 {
		session.ExpertInteractions = make(map[string]string)
		for _, id := range session.SelectedExpertIDs {
			agent := o.registry.Agent(id)
			if agent == nil {
				continue
			}
			interaction := o.peerInteraction(ctx, agent, query, session)
			if interaction == "" {
				continue
			}
			session.ExpertInteractions[id] = interaction

			name := agent.Profile.DisplayName
			if !emit(models.StreamEvent{Type: models.EventExpertStart, Expert: name}) {
				return session
			}
			if !emit(models.StreamEvent{Type: models.EventChunk, Expert: name, Content: interaction}) {
				return session
			}
			if !emit(models.StreamEvent{Type: models.EventExpertDone, Expert: name}) {
				return session
			}
		}
	}

	// Phase 5: summary.
	if summarizeAlways || len(session.ExpertResponses) >= 2 {
		if !emit(models.StreamEvent{Type: models.EventExpertStart, Expert: ambassadorName, IsSummary: true}) {
			return session
		}
		session.FinalSummary = o.summarize(ctx, query, session)
		if !emit(models.StreamEvent{Type: models.EventChunk, Expert: ambassadorName, Content: session.FinalSummary}) {
			return session
		}
		if !emit(models.StreamEvent{Type: models.EventExpertDone, Expert: ambassadorName}) {
			return session
		}
	}

	emit(models.StreamEvent{Type: models.EventDiscussionComplete})
	return session
}

// expertResponse streams one expert's answer through emit, recovering
// a panicking persona into an apology chunk. delivered is false when
// the consumer went away mid-answer.
func (o *Orchestrator) expertResponse(ctx context.Context, agent *experts.Agent, query, name string, emit func(models.StreamEvent) bool) (response string, delivered bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("expert", agent.Profile.ID).Interface("panic", r).Msg("expert response failed")
			apology := fmt.Sprintf("%s（%v）", expertApology, r)
			response = apology
			delivered = emit(models.StreamEvent{Type: models.EventChunk, Expert: name, Content: apology})
		}
	}()

	var full strings.Builder
	for fragment := range agent.ProcessQueryStream(ctx, query) {
		full.WriteString(fragment)
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		if !emit(models.StreamEvent{Type: models.EventChunk, Expert: name, Content: fragment}) {
			return full.String(), false
		}
	}
	return full.String(), true
}

// peerInteraction is best-effort: a panic is swallowed and reads as
// "no comment".
func (o *Orchestrator) peerInteraction(ctx context.Context, agent *experts.Agent, query string, session *models.CollaborationSession) (interaction string) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("expert", agent.Profile.ID).Interface("panic", r).Msg("peer interaction failed")
			interaction = ""
		}
	}()

	peers := make(map[string]string, len(session.ExpertResponses)-1)
	for peerID, response := range session.ExpertResponses {
		if peerID == agent.Profile.ID {
			continue
		}
		peers[o.registry.DisplayName(peerID)] = response
	}

	var pi experts.PeerInteractor = agent
	return strings.TrimSpace(pi.InteractWithPeers(ctx, query, peers))
}

// summarize runs the ambassador's synthesis, falling back to a
// deterministic concatenation when the synthesis itself degrades.
func (o *Orchestrator) summarize(ctx context.Context, query string, session *models.CollaborationSession) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("summary generation failed")
			summary = o.fallbackSummary(query, session)
		}
	}()

	var discussion strings.Builder
	for _, id := range session.SelectedExpertIDs {
		response, ok := session.ExpertResponses[id]
		if !ok {
			continue
		}
		fmt.Fprintf(&discussion, "\n\n**%s**：\n%s", o.registry.DisplayName(id), response)
		if interaction, ok := session.ExpertInteractions[id]; ok {
			fmt.Fprintf(&discussion, "\n%s", interaction)
		}
	}

	summary = o.ambassador.Summarize(ctx, query, discussion.String())
	if llm.IsApology(summary) {
		return o.fallbackSummary(query, session)
	}
	return summary
}

// fallbackSummary concatenates each expert's name with a truncated
// excerpt of its answer.
func (o *Orchestrator) fallbackSummary(query string, session *models.CollaborationSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "刚才各位专家就「%s」这个问题进行了精彩的讨论，让我来为大家做个总结。\n\n", query)

	var parts []string
	for _, id := range session.SelectedExpertIDs {
		response, ok := session.ExpertResponses[id]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("**%s**：%s", o.registry.DisplayName(id), truncateRunes(response, 100)))
	}
	b.WriteString(strings.Join(parts, "\n\n"))
	return b.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
