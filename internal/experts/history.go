package experts

import (
	"sync"

	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// historyCap bounds a persona's rolling history to 20 entries
// (10 user/assistant turns). Older entries are evicted FIFO.
const historyCap = 20

// History is a persona's mutex-guarded rolling conversation memory.
// Handlers serve requests concurrently, so every access takes the lock.
type History struct {
	mu      sync.Mutex
	entries []models.ConversationTurn
}

// AppendTurn records one completed user/assistant exchange and evicts
// the oldest entries beyond the cap.
func (h *History) AppendTurn(userText, replyText string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries,
		models.ConversationTurn{Role: "user", Content: userText},
		models.ConversationTurn{Role: "assistant", Content: replyText},
	)
	if len(h.entries) > historyCap {
		h.entries = h.entries[len(h.entries)-historyCap:]
	}
}

// Messages returns a snapshot of the retained history as chat messages,
// oldest first.
func (h *History) Messages() []models.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]models.ChatMessage, 0, len(h.entries))
	for _, e := range h.entries {
		out = append(out, models.ChatMessage{Role: e.Role, Content: e.Content})
	}
	return out
}

// Len reports the retained entry count.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Reset drops all retained entries.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
