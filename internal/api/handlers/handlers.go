// Package handlers implements the HTTP handlers of the Guangfu agents
// service: single-persona chat (buffered and streaming), collaborative
// discussion (aggregate and streaming), persona metadata, conversation
// history and the knowledge table.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lingnanlabs/guangfu-agents/internal/collab"
	"github.com/lingnanlabs/guangfu-agents/internal/experts"
	"github.com/lingnanlabs/guangfu-agents/internal/formatter"
	"github.com/lingnanlabs/guangfu-agents/internal/store"
	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Store        store.Store
	Registry     *experts.Registry
	Ambassador   *experts.Ambassador
	Orchestrator *collab.Orchestrator
}

// New creates a Handlers instance.
func New(s store.Store, registry *experts.Registry, ambassador *experts.Ambassador, orchestrator *collab.Orchestrator) *Handlers {
	return &Handlers{
		Store:        s,
		Registry:     registry,
		Ambassador:   ambassador,
		Orchestrator: orchestrator,
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	ExpertID  string `json:"expert_id"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Content   string        `json:"content"`
	Expert    string        `json:"expert"`
	ExpertID  string        `json:"expert_id"`
	SessionID string        `json:"session_id"`
	Timestamp time.Time     `json:"timestamp"`
	Render    models.Render `json:"render"`
}

// ── Persona metadata ────────────────────────────────────────

// ListAgents returns the static persona registry, ambassador first.
func (h *Handlers) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents := append([]models.ExpertProfile{h.Ambassador.Profile}, h.Registry.Profiles()...)
	respondJSON(w, http.StatusOK, agents)
}

// ── Single-persona chat ─────────────────────────────────────

// Chat answers one query with one persona, buffered.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	req, agent, ok := h.decodeChat(w, r)
	if !ok {
		return
	}

	content := agent.ProcessQuery(r.Context(), req.Message)
	h.logConversation(r, req.SessionID, req.ExpertID, req.Message, content)

	respondJSON(w, http.StatusOK, chatResponse{
		Content:   content,
		Expert:    agent.Profile.DisplayName,
		ExpertID:  req.ExpertID,
		SessionID: req.SessionID,
		Timestamp: time.Now().UTC(),
		Render:    formatter.Structure(content, req.ExpertID),
	})
}

// ChatStream answers one query with one persona over SSE.
func (h *Handlers) ChatStream(w http.ResponseWriter, r *http.Request) {
	req, agent, ok := h.decodeChat(w, r)
	if !ok {
		return
	}

	flusher, ok := beginSSE(w)
	if !ok {
		return
	}

	full := ""
	for fragment := range agent.ProcessQueryStream(r.Context(), req.Message) {
		full += fragment
		writeSSE(w, flusher, map[string]string{
			"type":    "chunk",
			"content": fragment,
			"expert":  agent.Profile.DisplayName,
		})
	}
	writeSSE(w, flusher, map[string]string{"type": "done"})

	h.logConversation(r, req.SessionID, req.ExpertID, req.Message, full)
}

func (h *Handlers) decodeChat(w http.ResponseWriter, r *http.Request) (chatRequest, *experts.Agent, bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return req, nil, false
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return req, nil, false
	}
	agent := h.Registry.Agent(req.ExpertID)
	if agent == nil {
		respondError(w, http.StatusNotFound, "unknown expert: "+req.ExpertID)
		return req, nil, false
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	return req, agent, true
}

// ── Collaboration ───────────────────────────────────────────

type collaborationRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Collaboration runs a buffered collaboration round and returns the
// aggregate session.
func (h *Handlers) Collaboration(w http.ResponseWriter, r *http.Request) {
	var req collaborationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	session := h.Orchestrator.Collaborate(r.Context(), req.Message)
	h.logConversation(r, req.SessionID, "collaboration", req.Message, session.FinalSummary)
	respondJSON(w, http.StatusOK, session)
}

// CollaborationStream runs a collaboration round over SSE, one framed
// event per record.
func (h *Handlers) CollaborationStream(w http.ResponseWriter, r *http.Request) {
	var req collaborationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	flusher, ok := beginSSE(w)
	if !ok {
		return
	}

	for event := range h.Orchestrator.Stream(r.Context(), req.Message) {
		writeSSE(w, flusher, event)
	}
}

// ── Conversations & knowledge ───────────────────────────────

// ListConversations returns a session's logged exchanges, newest first.
func (h *Handlers) ListConversations(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.Store.ListConversations(r.Context(), sessionID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []models.ConversationRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

// GetKnowledge returns a category's culture facts; ?q= filters by
// substring.
func (h *Handlers) GetKnowledge(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var (
		items []models.KnowledgeItem
		err   error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		items, err = h.Store.SearchKnowledge(r.Context(), category, q)
	} else {
		items, err = h.Store.ListKnowledge(r.Context(), category)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []models.KnowledgeItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// ── Helpers ─────────────────────────────────────────────────

// logConversation records an exchange best-effort; a store failure is
// logged and never fails the request.
func (h *Handlers) logConversation(r *http.Request, sessionID, expertID, userText, replyText string) {
	err := h.Store.SaveConversation(r.Context(), &models.ConversationRecord{
		SessionID: sessionID,
		ExpertID:  expertID,
		UserText:  userText,
		ReplyText: replyText,
	})
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("conversation log failed")
	}
}

func beginSSE(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	return flusher, true
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("sse marshal failed")
		return
	}
	w.Write([]byte("data: "))
	w.Write(data)
	w.Write([]byte("\n\n"))
	flusher.Flush()
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
