package collab

import (
	"context"
	"strings"
	"testing"

	"github.com/lingnanlabs/guangfu-agents/internal/experts"
	"github.com/lingnanlabs/guangfu-agents/internal/llm"
	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// scriptedLLM plays back queued stream and completion results in call
// order. A stream call whose index is panicAtStream panics, standing in
// for a persona programming error.
type scriptedLLM struct {
	streams       [][]string
	completes     []string
	streamCalls   int
	completeCalls int
	panicAtStream int
}

func newScriptedLLM() *scriptedLLM { return &scriptedLLM{panicAtStream: -1} }

func (s *scriptedLLM) Complete(context.Context, llm.Request) string {
	reply := "总结回复"
	if s.completeCalls < len(s.completes) {
		reply = s.completes[s.completeCalls]
	}
	s.completeCalls++
	return reply
}

func (s *scriptedLLM) Stream(ctx context.Context, _ llm.Request) <-chan string {
	call := s.streamCalls
	s.streamCalls++
	if call == s.panicAtStream {
		panic("persona exploded")
	}

	var fragments []string
	if call < len(s.streams) {
		fragments = s.streams[call]
	}
	out := make(chan string)
	go func() {
		defer close(out)
		for _, f := range fragments {
			select {
			case out <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func newTestOrchestrator(fake *scriptedLLM) *Orchestrator {
	registry := experts.NewRegistry(experts.AgentDeps{LLM: fake})
	return New(registry, experts.NewAmbassador(fake))
}

func collect(ch <-chan models.StreamEvent) []models.StreamEvent {
	var out []models.StreamEvent
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

// checkBrackets verifies that every chunk sits inside its expert's
// open bracket and that brackets never interleave.
func checkBrackets(t *testing.T, events []models.StreamEvent) {
	t.Helper()
	open := ""
	for i, ev := range events {
		switch ev.Type {
		case models.EventExpertStart:
			if open != "" {
				t.Fatalf("event %d: start for %q while %q still open", i, ev.Expert, open)
			}
			open = ev.Expert
		case models.EventChunk:
			if open != ev.Expert {
				t.Fatalf("event %d: chunk for %q outside its bracket (open=%q)", i, ev.Expert, open)
			}
		case models.EventExpertDone:
			if open != ev.Expert {
				t.Fatalf("event %d: done for %q does not match open bracket %q", i, ev.Expert, open)
			}
			open = ""
		}
	}
	if open != "" {
		t.Fatalf("bracket for %q never closed", open)
	}
}

func TestStreamTwoExpertRound(t *testing.T) {
	fake := newScriptedLLM()
	fake.streams = [][]string{
		{"欢迎各位朋友！"},       // ambassador opener
		{"点心讲究", "皮薄馅靓"}, // culinary
		{"配茶更佳"},          // tea culture
	}
	fake.completes = []string{"美食互动", "茶艺互动", "总结回复"}

	o := newTestOrchestrator(fake)
	events := collect(o.Stream(context.Background(), "品茶配点心"))

	checkBrackets(t, events)

	last := events[len(events)-1]
	if last.Type != models.EventDiscussionComplete {
		t.Fatalf("last event = %q, want discussion_complete", last.Type)
	}

	// Opener, two experts, two interactions, summary: six brackets.
	starts := 0
	for _, ev := range events {
		if ev.Type == models.EventExpertStart {
			starts++
		}
	}
	if starts != 6 {
		t.Fatalf("expert_start count = %d, want 6", starts)
	}

	var summaryStart *models.StreamEvent
	for i := range events {
		if events[i].Type == models.EventExpertStart && events[i].IsSummary {
			summaryStart = &events[i]
		}
	}
	if summaryStart == nil {
		t.Fatal("no summary bracket emitted")
	}
	if summaryStart.Expert != "广府文化助手" {
		t.Fatalf("summary expert = %q", summaryStart.Expert)
	}
}

func TestStreamSecondExpertPanics(t *testing.T) {
	fake := newScriptedLLM()
	fake.streams = [][]string{
		{"欢迎！"},
		{"美食回答"},
	}
	fake.panicAtStream = 2 // tea culture expert
	fake.completes = []string{"美食互动", "茶艺互动", "总结回复"}

	o := newTestOrchestrator(fake)
	events := collect(o.Stream(context.Background(), "品茶配点心"))

	checkBrackets(t, events)

	if events[len(events)-1].Type != models.EventDiscussionComplete {
		t.Fatalf("round did not complete: last = %q", events[len(events)-1].Type)
	}

	// The failed expert keeps exactly one bracket whose sole chunk is
	// an apology.
	var teaChunks []string
	teaStarts := 0
	for _, ev := range events {
		if ev.Expert != "茶文化专家" {
			continue
		}
		switch ev.Type {
		case models.EventExpertStart:
			if !ev.IsSummary {
				teaStarts++
			}
		case models.EventChunk:
			teaChunks = append(teaChunks, ev.Content)
		}
	}
	// One response bracket plus one interaction bracket.
	if teaStarts != 2 {
		t.Fatalf("tea expert brackets = %d, want 2", teaStarts)
	}
	foundApology := false
	for _, c := range teaChunks {
		if strings.Contains(c, expertApology) {
			foundApology = true
		}
	}
	if !foundApology {
		t.Fatalf("no apology chunk for failed expert: %v", teaChunks)
	}

	// Summary still ran and is not the deterministic fallback.
	var summaryChunk string
	inSummary := false
	for _, ev := range events {
		switch {
		case ev.Type == models.EventExpertStart && ev.IsSummary:
			inSummary = true
		case ev.Type == models.EventChunk && inSummary:
			summaryChunk += ev.Content
		case ev.Type == models.EventExpertDone && inSummary:
			inSummary = false
		}
	}
	if summaryChunk != "总结回复" {
		t.Fatalf("summary = %q, want scripted reply", summaryChunk)
	}
}

func TestStreamSingleExpertSkipsInteractionAndSummary(t *testing.T) {
	fake := newScriptedLLM()
	fake.streams = [][]string{
		{"欢迎！"},
		{"只有美食回答"},
	}

	o := newTestOrchestrator(fake)
	events := collect(o.Stream(context.Background(), "点心"))

	checkBrackets(t, events)
	for _, ev := range events {
		if ev.IsSummary {
			t.Fatal("single-expert round must not emit a summary bracket")
		}
	}
	if fake.completeCalls != 0 {
		t.Fatalf("interaction/summary completions ran: %d", fake.completeCalls)
	}
	if events[len(events)-1].Type != models.EventDiscussionComplete {
		t.Fatal("missing discussion_complete")
	}
}

func TestCollaborateAggregate(t *testing.T) {
	fake := newScriptedLLM()
	fake.streams = [][]string{
		{"欢迎！"},
		{"美食回答"},
		{"茶文化回答"},
	}
	fake.completes = []string{"美食互动", "", "总结回复"}

	o := newTestOrchestrator(fake)
	session := o.Collaborate(context.Background(), "品茶配点心")

	if session.AmbassadorInitial != "欢迎！" {
		t.Fatalf("AmbassadorInitial = %q", session.AmbassadorInitial)
	}
	if len(session.SelectedExpertIDs) != 2 {
		t.Fatalf("selected experts = %v", session.SelectedExpertIDs)
	}
	if session.ExpertResponses[experts.Culinary] != "美食回答" {
		t.Fatalf("culinary response = %q", session.ExpertResponses[experts.Culinary])
	}
	// Empty interaction results are dropped, not stored.
	if _, ok := session.ExpertInteractions[experts.TeaCulture]; ok {
		t.Fatal("empty interaction stored")
	}
	if session.ExpertInteractions[experts.Culinary] != "美食互动" {
		t.Fatalf("interactions = %v", session.ExpertInteractions)
	}
	if session.FinalSummary != "总结回复" {
		t.Fatalf("FinalSummary = %q", session.FinalSummary)
	}
	if session.Participants[0] != "广府文化助手" || len(session.Participants) != 3 {
		t.Fatalf("participants = %v", session.Participants)
	}
}

func TestSummaryFallsBackOnDegradedReply(t *testing.T) {
	fake := newScriptedLLM()
	fake.streams = [][]string{
		{"欢迎！"},
		{"美食回答"},
		{"茶文化回答"},
	}
	fake.completes = []string{"美食互动", "茶艺互动", llm.ApologyGeneric}

	o := newTestOrchestrator(fake)
	session := o.Collaborate(context.Background(), "品茶配点心")

	if !strings.Contains(session.FinalSummary, "让我来为大家做个总结") {
		t.Fatalf("fallback header missing: %q", session.FinalSummary)
	}
	if !strings.Contains(session.FinalSummary, "美食专家") || !strings.Contains(session.FinalSummary, "美食回答") {
		t.Fatalf("fallback lacks expert excerpts: %q", session.FinalSummary)
	}
}

func TestWhitespaceFragmentsKeptInBufferedText(t *testing.T) {
	fake := newScriptedLLM()
	fake.streams = [][]string{
		{"欢迎", "\n", "各位"},
		{"皮薄", "\n\n", "馅靓"},
	}

	o := newTestOrchestrator(fake)
	session := o.Collaborate(context.Background(), "点心")

	if session.AmbassadorInitial != "欢迎\n各位" {
		t.Fatalf("AmbassadorInitial = %q, want newline preserved", session.AmbassadorInitial)
	}
	if session.ExpertResponses[experts.Culinary] != "皮薄\n\n馅靓" {
		t.Fatalf("culinary response = %q, want newlines preserved", session.ExpertResponses[experts.Culinary])
	}
}

func TestStreamSkipsWhitespaceOnlyChunks(t *testing.T) {
	fake := newScriptedLLM()
	fake.streams = [][]string{
		{"欢迎", "\n", "各位"},
		{"皮薄", "  ", "馅靓"},
	}

	o := newTestOrchestrator(fake)
	events := collect(o.Stream(context.Background(), "点心"))

	checkBrackets(t, events)
	for i, ev := range events {
		if ev.Type == models.EventChunk && strings.TrimSpace(ev.Content) == "" {
			t.Fatalf("event %d: whitespace-only chunk emitted: %q", i, ev.Content)
		}
	}
}

func TestStreamConsumerCancellation(t *testing.T) {
	fake := newScriptedLLM()
	fake.streams = [][]string{
		{"欢", "迎", "各", "位"},
		{"美食回答"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := newTestOrchestrator(fake)
	ch := o.Stream(ctx, "点心")

	// Read the opening bracket and the first chunk, then walk away.
	<-ch
	<-ch
	cancel()

	for range ch {
	}
	// The channel closed; nothing to assert beyond not deadlocking.
}
