package experts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/lingnanlabs/guangfu-agents/internal/classifier"
	"github.com/lingnanlabs/guangfu-agents/internal/llm"
)

// fakeLLM records the last request and plays back canned output.
type fakeLLM struct {
	reply     string
	fragments []string
	lastReq   llm.Request
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) string {
	f.lastReq = req
	return f.reply
}

func (f *fakeLLM) Stream(ctx context.Context, req llm.Request) <-chan string {
	f.lastReq = req
	out := make(chan string)
	go func() {
		defer close(out)
		for _, fr := range f.fragments {
			select {
			case out <- fr:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func newTestRegistry(fake *fakeLLM) *Registry {
	return NewRegistry(AgentDeps{LLM: fake})
}

func TestRouteDomainSubset(t *testing.T) {
	r := newTestRegistry(&fakeLLM{})

	got := r.Route("虾饺和烧卖这些点心怎么做")
	want := []string{Culinary}
	// 怎么 is a planning word, not a routing keyword; only the culinary
	// set matches 点心.
	if len(got) != len(want) || got[0] != Culinary {
		t.Fatalf("Route = %v, want %v", got, want)
	}
}

func TestRouteMultipleDomainsKeepsRegistryOrder(t *testing.T) {
	r := newTestRegistry(&fakeLLM{})

	got := r.Route("品茶配点心，顺便聊聊粤剧唱腔")
	want := []string{CantoneseOpera, Culinary, TeaCulture}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("Route = %v, want %v", got, want)
	}
}

func TestRouteNoMatchSelectsAll(t *testing.T) {
	r := newTestRegistry(&fakeLLM{})

	got := r.Route("asdkjalksd")
	if len(got) != len(profiles) {
		t.Fatalf("Route on gibberish selected %d experts, want all %d", len(got), len(profiles))
	}
	if got[0] != CantoneseOpera || got[len(got)-1] != TCM {
		t.Fatalf("full selection out of registry order: %v", got)
	}
}

func TestRouteBroadTriggerOverridesSubset(t *testing.T) {
	r := newTestRegistry(&fakeLLM{})

	// 点心 matches culinary, but 广府 broadens to the full registry.
	got := r.Route("介绍一下广府的点心")
	if len(got) != len(profiles) {
		t.Fatalf("broad trigger selected %d experts, want all %d", len(got), len(profiles))
	}
}

func TestHistoryCapEviction(t *testing.T) {
	h := &History{}
	for i := 0; i < 15; i++ {
		h.AppendTurn(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}
	if h.Len() != historyCap {
		t.Fatalf("Len = %d, want %d", h.Len(), historyCap)
	}
	msgs := h.Messages()
	if msgs[0].Content != "q5" {
		t.Fatalf("oldest retained = %q, want q5", msgs[0].Content)
	}
	if msgs[len(msgs)-1].Content != "a14" {
		t.Fatalf("newest retained = %q, want a14", msgs[len(msgs)-1].Content)
	}
}

func TestProcessQueryRecordsHistoryAndEnrichesQuery(t *testing.T) {
	fake := &fakeLLM{reply: "讲解内容"}
	cls := classifier.New(nil)
	reg := NewRegistry(AgentDeps{
		LLM:      fake,
		Classify: cls.Classify,
		Retrieve: func(_ context.Context, domainID, _ string) string {
			return "背景：" + domainID
		},
	})
	agent := reg.Agent(Culinary)

	reply := agent.ProcessQuery(context.Background(), "请详细介绍广府菜的烹饪技艺")
	if reply != "讲解内容" {
		t.Fatalf("reply = %q", reply)
	}
	if agent.History().Len() != 2 {
		t.Fatalf("history entries = %d, want 2", agent.History().Len())
	}

	last := fake.lastReq.Messages[len(fake.lastReq.Messages)-1]
	if !strings.Contains(last.Content, "相关背景知识：背景：culinary") {
		t.Fatalf("query not enriched: %q", last.Content)
	}
	if !strings.Contains(fake.lastReq.Messages[0].Content, "专业介绍模式") {
		t.Fatal("professional query did not select professional mode suffix")
	}
}

func TestProcessQueryCasualModeSuffix(t *testing.T) {
	fake := &fakeLLM{reply: "你好呀"}
	cls := classifier.New(nil)
	reg := NewRegistry(AgentDeps{LLM: fake, Classify: cls.Classify})

	reg.Agent(TeaCulture).ProcessQuery(context.Background(), "你好")
	if !strings.Contains(fake.lastReq.Messages[0].Content, "日常闲聊模式") {
		t.Fatal("greeting did not select casual mode suffix")
	}
}

func TestProcessQueryStreamAccumulatesHistory(t *testing.T) {
	fake := &fakeLLM{fragments: []string{"广绣", "针法", "精妙"}}
	reg := newTestRegistry(fake)
	agent := reg.Agent(Craft)

	var got strings.Builder
	for fr := range agent.ProcessQueryStream(context.Background(), "广绣") {
		got.WriteString(fr)
	}
	if got.String() != "广绣针法精妙" {
		t.Fatalf("streamed = %q", got.String())
	}

	msgs := agent.History().Messages()
	if len(msgs) != 2 || msgs[1].Content != "广绣针法精妙" {
		t.Fatalf("history after stream = %v", msgs)
	}
}

func TestInteractWithPeersEmptyWithoutPeers(t *testing.T) {
	fake := &fakeLLM{reply: "不该被调用"}
	agent := newTestRegistry(fake).Agent(Festival)

	if got := agent.InteractWithPeers(context.Background(), "问题", nil); got != "" {
		t.Fatalf("interaction without peers = %q, want empty", got)
	}
}

func TestInteractWithPeersBuildsDiscussionPrompt(t *testing.T) {
	fake := &fakeLLM{reply: "互动回应"}
	agent := newTestRegistry(fake).Agent(Culinary)

	got := agent.InteractWithPeers(context.Background(), "波罗诞有什么好吃的", map[string]string{
		"节庆专家": "波罗诞是广州最大的民间庙会",
	})
	if got != "互动回应" {
		t.Fatalf("interaction = %q", got)
	}
	user := fake.lastReq.Messages[1].Content
	if !strings.Contains(user, "节庆专家的观点：") {
		t.Fatalf("peer views missing from prompt: %q", user)
	}
	if fake.lastReq.MaxTokens != 800 {
		t.Fatalf("interaction MaxTokens = %d, want 800", fake.lastReq.MaxTokens)
	}
}

func TestInteractWithPeersOrdersViewsDeterministically(t *testing.T) {
	fake := &fakeLLM{reply: "互动回应"}
	agent := newTestRegistry(fake).Agent(Culinary)

	peers := map[string]string{
		"茶文化专家": "配单丛最好",
		"节庆专家":  "庙会小吃丰富",
		"粤剧专家":  "戏棚边也有美食",
	}

	agent.InteractWithPeers(context.Background(), "问题", peers)
	first := fake.lastReq.Messages[1].Content
	for i := 0; i < 5; i++ {
		agent.InteractWithPeers(context.Background(), "问题", peers)
		if got := fake.lastReq.Messages[1].Content; got != first {
			t.Fatalf("prompt varied across calls:\n%q\n%q", first, got)
		}
	}

	// Views appear in sorted name order.
	idxFestival := strings.Index(first, "节庆专家的观点：")
	idxTea := strings.Index(first, "茶文化专家的观点：")
	idxOpera := strings.Index(first, "粤剧专家的观点：")
	if idxFestival < 0 || idxTea < 0 || idxOpera < 0 {
		t.Fatalf("peer views missing from prompt: %q", first)
	}
	if !sort.IntsAreSorted([]int{idxOpera, idxFestival, idxTea}) {
		t.Fatalf("peer views not in sorted name order: %q", first)
	}
}

func TestIsPlanningQuery(t *testing.T) {
	if !IsPlanningQuery("第一次来广州怎么安排一日游") {
		t.Fatal("itinerary question not detected as planning")
	}
	if IsPlanningQuery("粤剧有哪些行当") {
		t.Fatal("plain inquiry misdetected as planning")
	}
}

func TestSummarizePicksRegisterByQuery(t *testing.T) {
	fake := &fakeLLM{reply: "**总结**内容"}
	amb := NewAmbassador(fake)

	got := amb.Summarize(context.Background(), "粤剧好看吗", "专家讨论")
	if got != "总结内容" {
		t.Fatalf("summary not markdown-cleaned: %q", got)
	}
	if fake.lastReq.MaxTokens != 100 {
		t.Fatalf("concise summary MaxTokens = %d, want 100", fake.lastReq.MaxTokens)
	}

	amb.Summarize(context.Background(), "怎么规划广府文化一日游", "专家讨论")
	if fake.lastReq.MaxTokens != 400 {
		t.Fatalf("planning summary MaxTokens = %d, want 400", fake.lastReq.MaxTokens)
	}
}

func TestCleanMarkdown(t *testing.T) {
	got := CleanMarkdown("# 标题\n- 要点 `code` **粗体**")
	for _, marker := range []string{"#", "*", "`", "- "} {
		if strings.Contains(got, marker) {
			t.Fatalf("marker %q survived cleaning: %q", marker, got)
		}
	}
}
