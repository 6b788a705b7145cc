package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lingnanlabs/guangfu-agents/internal/api"
	"github.com/lingnanlabs/guangfu-agents/internal/api/handlers"
	"github.com/lingnanlabs/guangfu-agents/internal/classifier"
	"github.com/lingnanlabs/guangfu-agents/internal/collab"
	"github.com/lingnanlabs/guangfu-agents/internal/config"
	"github.com/lingnanlabs/guangfu-agents/internal/experts"
	"github.com/lingnanlabs/guangfu-agents/internal/llm"
	"github.com/lingnanlabs/guangfu-agents/internal/store"
	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

type fakeLLM struct {
	reply     string
	fragments []string
}

func (f *fakeLLM) Complete(context.Context, llm.Request) string { return f.reply }

func (f *fakeLLM) Stream(ctx context.Context, _ llm.Request) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for _, frag := range f.fragments {
			select {
			case out <- frag:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func newTestRouter(t *testing.T, gateway llm.Completer) (http.Handler, store.Store) {
	t.Helper()

	dataStore := store.NewMemoryStore()

	var registry *experts.Registry
	cls := classifier.New(func(domainID string) []string {
		return registry.PersonaKeywords(domainID)
	})
	registry = experts.NewRegistry(experts.AgentDeps{
		LLM:      gateway,
		Classify: cls.Classify,
		Retrieve: func(_ context.Context, domainID, _ string) string {
			return store.DomainFallback(domainID)
		},
	})
	ambassador := experts.NewAmbassador(gateway)
	orchestrator := collab.New(registry, ambassador)

	h := handlers.New(dataStore, registry, ambassador, orchestrator)
	return api.NewRouter(config.Load(), h), dataStore
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &fakeLLM{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestListAgentsAmbassadorFirst(t *testing.T) {
	router, _ := newTestRouter(t, &fakeLLM{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/agents", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var agents []models.ExpertProfile
	if err := json.NewDecoder(w.Body).Decode(&agents); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(agents) != 9 {
		t.Fatalf("got %d agents, want 9", len(agents))
	}
	if agents[0].ID != experts.AmbassadorID {
		t.Errorf("first agent = %q, want ambassador", agents[0].ID)
	}
}

func TestChatValidation(t *testing.T) {
	router, _ := newTestRouter(t, &fakeLLM{})

	// Empty message
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"expert_id":"culinary"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty message: status = %d, want 400", w.Code)
	}

	// Unknown expert
	req = httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"你好","expert_id":"astronomy"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown expert: status = %d, want 404", w.Code)
	}
}

func TestChatRespondsAndLogs(t *testing.T) {
	router, dataStore := newTestRouter(t, &fakeLLM{reply: "虾饺要用澄面做皮。"})

	body := `{"message":"虾饺怎么做","expert_id":"culinary","session_id":"sess-9"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Content   string        `json:"content"`
		Expert    string        `json:"expert"`
		SessionID string        `json:"session_id"`
		Render    models.Render `json:"render"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Content != "虾饺要用澄面做皮。" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Expert != "美食专家" {
		t.Errorf("expert = %q", resp.Expert)
	}
	if resp.Render.Layout == "" {
		t.Error("render layout missing")
	}

	records, err := dataStore.ListConversations(context.Background(), "sess-9", 0)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(records) != 1 || records[0].ReplyText != "虾饺要用澄面做皮。" {
		t.Fatalf("logged records = %v", records)
	}
}

func TestChatStreamFramesSSE(t *testing.T) {
	router, _ := newTestRouter(t, &fakeLLM{fragments: []string{"虾饺", "要用澄面"}})

	body := `{"message":"虾饺怎么做","expert_id":"culinary"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/stream", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("content type = %q", ct)
	}

	var chunks, done int
	for _, line := range strings.Split(w.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event map[string]string
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			t.Fatalf("bad frame %q: %v", line, err)
		}
		switch event["type"] {
		case "chunk":
			chunks++
		case "done":
			done++
		}
	}
	if chunks != 2 || done != 1 {
		t.Errorf("chunks = %d done = %d, want 2 and 1", chunks, done)
	}
}

func TestListConversationsRequiresSession(t *testing.T) {
	router, _ := newTestRouter(t, &fakeLLM{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetKnowledge(t *testing.T) {
	router, _ := newTestRouter(t, &fakeLLM{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/knowledge/culinary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var items []models.KnowledgeItem
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("no seeded culinary knowledge returned")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/knowledge/culinary?q=茶楼", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	items = nil
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("decode filtered: %v", err)
	}
	if len(items) != 1 || items[0].Title != "茶楼文化" {
		t.Fatalf("filtered items = %v", items)
	}
}
