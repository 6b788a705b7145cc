package experts

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lingnanlabs/guangfu-agents/internal/llm"
	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// ClassifyFunc scores an utterance for a domain. Supplied by the
// context classifier at wiring time.
type ClassifyFunc func(utterance, domainID string) models.ClassificationResult

// RetrieveFunc looks up a background-knowledge snippet for a domain and
// query. An empty result means no snippet is prepended.
type RetrieveFunc func(ctx context.Context, domainID, query string) string

// PeerInteractor is the capability an agent exposes for the discussion
// phase of a collaboration round.
type PeerInteractor interface {
	// InteractWithPeers reacts to peer replies, keyed by display name
	// and already excluding the agent's own. Returns "" when there is
	// nothing to react to.
	InteractWithPeers(ctx context.Context, query string, peers map[string]string) string
}

// AgentDeps are the shared dependencies every persona agent is built
// with.
type AgentDeps struct {
	LLM         llm.Completer
	Classify    ClassifyFunc
	Retrieve    RetrieveFunc
	Temperature float64
	MaxTokens   int
}

// Agent is one live themed persona: a static profile plus rolling
// history, speaking through the LLM gateway.
type Agent struct {
	Profile models.ExpertProfile

	deps    AgentDeps
	history *History
}

func newAgent(profile models.ExpertProfile, deps AgentDeps) *Agent {
	if deps.Temperature == 0 {
		deps.Temperature = 0.7
	}
	if deps.MaxTokens == 0 {
		deps.MaxTokens = 2000
	}
	return &Agent{Profile: profile, deps: deps, history: &History{}}
}

// History exposes the agent's rolling memory.
func (a *Agent) History() *History { return a.history }

// ProcessQuery answers one query in full. The reply is always
// non-empty: gateway failures come back as an apology fragment, which
// is returned and recorded like any other reply.
func (a *Agent) ProcessQuery(ctx context.Context, query string) string {
	reply := a.deps.LLM.Complete(ctx, llm.Request{
		Messages:    a.buildMessages(ctx, query),
		Temperature: a.deps.Temperature,
		MaxTokens:   a.deps.MaxTokens,
	})
	a.history.AppendTurn(query, reply)
	return reply
}

// ProcessQueryStream answers one query as a fragment stream. The full
// reply is recorded in history once the stream drains. Cancelling ctx
// stops production at the next fragment boundary; the partial reply is
// still recorded.
func (a *Agent) ProcessQueryStream(ctx context.Context, query string) <-chan string {
	// Messages are built and the gateway call issued before the
	// producer goroutine starts, so a failing classifier or retriever
	// surfaces to the caller rather than inside a goroutine.
	fragments := a.deps.LLM.Stream(ctx, llm.Request{
		Messages:    a.buildMessages(ctx, query),
		Temperature: a.deps.Temperature,
		MaxTokens:   a.deps.MaxTokens,
	})

	out := make(chan string)
	go func() {
		defer close(out)

		var full strings.Builder
		for fragment := range fragments {
			full.WriteString(fragment)
			select {
			case out <- fragment:
			case <-ctx.Done():
				a.history.AppendTurn(query, full.String())
				return
			}
		}
		a.history.AppendTurn(query, full.String())
	}()
	return out
}

// InteractWithPeers implements PeerInteractor.
func (a *Agent) InteractWithPeers(ctx context.Context, query string, peers map[string]string) string {
	if len(peers) == 0 {
		return ""
	}

	// Sorted by name so the prompt is identical across calls with the
	// same peer set.
	names := make([]string, 0, len(peers))
	for name := range peers {
		names = append(names, name)
	}
	sort.Strings(names)

	views := make([]string, 0, len(names))
	for _, name := range names {
		views = append(views, fmt.Sprintf("%s的观点：%s", name, peers[name]))
	}

	messages := []models.ChatMessage{
		{Role: "system", Content: a.Profile.SystemPrompt + interactSuffix},
		{Role: "user", Content: fmt.Sprintf(
			"用户问题：%s\n\n其他专家的回答：\n%s\n\n请作为%s，针对其他专家的观点进行互动回应。可以补充自己领域相关的内容，或者从自己的专业角度提供不同的见解。",
			query, strings.Join(views, "\n"), a.Profile.DisplayName,
		)},
	}

	return a.deps.LLM.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: 0.8,
		MaxTokens:   800,
	})
}

// buildMessages assembles system prompt, retained history and the
// knowledge-enriched query for one call.
func (a *Agent) buildMessages(ctx context.Context, query string) []models.ChatMessage {
	prompt := a.Profile.SystemPrompt
	if a.deps.Classify != nil {
		cls := a.deps.Classify(query, a.Profile.ID)
		if cls.ContextType == models.ContextCasual && cls.Confidence >= 0.7 {
			prompt += casualModeSuffix
		} else {
			prompt += professionalModeSuffix
		}
		log.Debug().
			Str("expert", a.Profile.ID).
			Str("context_type", cls.ContextType).
			Float64("confidence", cls.Confidence).
			Msg("classified query")
	}

	enriched := query
	if a.deps.Retrieve != nil {
		if snippet := a.deps.Retrieve(ctx, a.Profile.ID, query); snippet != "" {
			enriched = query + "\n\n相关背景知识：" + snippet
		}
	}

	messages := []models.ChatMessage{{Role: "system", Content: prompt}}
	messages = append(messages, a.history.Messages()...)
	return append(messages, models.ChatMessage{Role: "user", Content: enriched})
}
