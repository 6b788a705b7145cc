// Package models defines the shared data types of the Guangfu heritage
// multi-persona chat service: expert profiles, classification results,
// collaboration sessions, stream events, and persisted records.
package models

import "time"

// ── Chat primitives ─────────────────────────────────────────

// ChatMessage is one role-tagged message sent to the LLM gateway.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ConversationTurn is one entry of a persona's rolling history.
type ConversationTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ── Context classification ──────────────────────────────────

// Context types produced by the classifier.
const (
	ContextCasual       = "casual"
	ContextProfessional = "professional"
)

// ClassificationResult is the outcome of scoring one utterance.
// Produced fresh per call, never persisted.
type ClassificationResult struct {
	ContextType       string   `json:"context_type"` // casual | professional
	Confidence        float64  `json:"confidence"`   // [0,1]
	CasualScore       float64  `json:"casual_score"` // [0,10]
	ProfessionalScore float64  `json:"professional_score"`
	Reasoning         []string `json:"reasoning"`
}

// ── Expert registry ─────────────────────────────────────────

// ExpertProfile is the static, process-lifetime description of one
// themed persona. PersonaKeywords drive both routing and the
// classifier's domain-specific scoring.
type ExpertProfile struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"name"`
	Title           string   `json:"title"`
	Icon            string   `json:"icon"`
	Description     string   `json:"description"`
	Specialties     []string `json:"specialties"`
	PersonaKeywords []string `json:"-"`
	SystemPrompt    string   `json:"-"`
}

// ── Collaboration ───────────────────────────────────────────

// CollaborationSession is the transient aggregate built for one
// collaborative query. It is discarded once the response is sent.
type CollaborationSession struct {
	Query              string            `json:"user_query"`
	AmbassadorInitial  string            `json:"ambassador_initial"`
	SelectedExpertIDs  []string          `json:"selected_experts"`
	ExpertResponses    map[string]string `json:"expert_responses"`
	ExpertInteractions map[string]string `json:"expert_interactions,omitempty"`
	FinalSummary       string            `json:"final_summary"`
	Participants       []string          `json:"participants"`
}

// Stream event types emitted by the collaboration orchestrator.
const (
	EventExpertStart        = "expert_start"
	EventChunk              = "chunk"
	EventExpertDone         = "expert_done"
	EventDiscussionComplete = "discussion_complete"
	EventError              = "error"
)

// StreamEvent is one framed record of the collaboration stream.
// For any expert, all chunk events are strictly bracketed between its
// expert_start and expert_done; brackets never interleave.
type StreamEvent struct {
	Type      string `json:"type"`
	Expert    string `json:"expert,omitempty"`
	Content   string `json:"content,omitempty"`
	Message   string `json:"message,omitempty"`
	IsSummary bool   `json:"is_summary,omitempty"`
}

// ── Structured rendering ────────────────────────────────────

// Render layouts produced by the response structuring parser.
const (
	LayoutEmojiCard = "emoji_card"
	LayoutTimeline  = "timeline"
	LayoutCard      = "card"
)

// Render is the presentational re-flow of a finished persona reply.
// It carries the same text as the raw reply, only re-sectioned.
type Render struct {
	Layout   string          `json:"layout"`
	Title    string          `json:"title,omitempty"`
	Subtitle string          `json:"subtitle,omitempty"`
	Sections []Section       `json:"sections,omitempty"`
	Timeline []TimelineEntry `json:"timeline,omitempty"`
}

// Section is one titled, iconified block of a card layout.
type Section struct {
	Title   string `json:"title"`
	Icon    string `json:"icon"`
	Content string `json:"content"`
}

// TimelineEntry is one time-of-day slot of an itinerary layout.
type TimelineEntry struct {
	Period  string `json:"period"`
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ── Persisted records ───────────────────────────────────────

// ConversationRecord is one logged user/assistant exchange, keyed by
// session. Persistence is best-effort; losing a record never fails a
// request.
type ConversationRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	ExpertID  string    `json:"expert_id"`
	UserText  string    `json:"user_message"`
	ReplyText string    `json:"agent_response"`
	CreatedAt time.Time `json:"created_at"`
}

// KnowledgeItem is one entry of the static culture-fact lookup table,
// keyed by category and title.
type KnowledgeItem struct {
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}
