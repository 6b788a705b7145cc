package experts

import (
	"context"
	"fmt"
	"strings"

	"github.com/lingnanlabs/guangfu-agents/internal/llm"
	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// planningKeywords mark a query as asking for steps, routes or plans.
// The ambassador then switches both its opening and its summary to the
// structured planning register.
var planningKeywords = []string{
	"怎么", "如何", "步骤", "流程", "过程", "方法", "路线", "计划",
	"规划", "安排", "攻略", "指南", "教程", "学习", "入门", "开始",
	"准备", "需要", "建议", "推荐", "顺序", "先后", "第一步", "首先",
}

// Ambassador is the coordinating persona of a collaboration round: it
// opens the discussion and synthesizes the final summary. It keeps no
// history; every round starts fresh.
type Ambassador struct {
	Profile models.ExpertProfile

	llm llm.Completer
}

// NewAmbassador creates the coordinating persona.
func NewAmbassador(completer llm.Completer) *Ambassador {
	return &Ambassador{
		Profile: models.ExpertProfile{
			ID:          AmbassadorID,
			DisplayName: "广府文化助手",
			Title:       "文化综合推广",
			Icon:        "🏮",
			Description: "热情洋溢、博学多才、善于总结、富有感染力",
			Specialties: []string{"文化综合", "宣传推广", "总结概括", "文化传承"},
		},
		llm: completer,
	}
}

// IsPlanningQuery reports whether the query asks for steps or plans.
func IsPlanningQuery(query string) bool {
	for _, kw := range planningKeywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

// InitialResponseStream streams the welcoming opener of a round. The
// prompt acknowledges that concrete guidance is coming when the query
// is a planning one.
func (a *Ambassador) InitialResponseStream(ctx context.Context, query string) <-chan string {
	var content string
	if IsPlanningQuery(query) {
		content = fmt.Sprintf(
			"用户问题：%s\n\n这是一个需要步骤指导的问题。请作为广府文化助手，首先热情欢迎用户，理解用户需要具体指导，并说明你将邀请相关专家提供详细步骤建议。回复要简洁但热情。",
			query)
	} else {
		content = fmt.Sprintf(
			"用户问题：%s\n\n请作为广府文化助手，首先热情欢迎用户，并对问题进行简要回应。然后说明你将邀请相关专家来详细解答。回复要简洁但热情。",
			query)
	}

	return a.llm.Stream(ctx, llm.Request{
		Messages: []models.ChatMessage{
			{Role: "system", Content: ambassadorPrompt},
			{Role: "user", Content: content},
		},
		Temperature: 0.8,
		MaxTokens:   500,
	})
}

// InitialResponse is the buffered variant of the opener.
func (a *Ambassador) InitialResponse(ctx context.Context, query string) string {
	var full strings.Builder
	for fragment := range a.InitialResponseStream(ctx, query) {
		full.WriteString(fragment)
	}
	if full.Len() == 0 {
		return fmt.Sprintf("各位朋友，欢迎来到广府非遗文化交流平台！关于您的问题「%s」，让我邀请我们的专家团队来为您详细解答。", query)
	}
	return full.String()
}

// Summarize synthesizes the final summary over the discussion content.
// Planning queries get a structured step plan; everything else gets a
// short engaging wrap-up. Markdown markers are stripped either way.
func (a *Ambassador) Summarize(ctx context.Context, query, discussion string) string {
	var (
		system      string
		user        string
		temperature float64
		maxTokens   int
	)
	if IsPlanningQuery(query) {
		system = planningSummaryPrompt
		user = fmt.Sprintf(
			"用户问题：%s\n\n专家讨论内容：\n%s\n\n请根据专家们的建议，整理出一个结构化的推荐路线或步骤指南。按逻辑顺序整理关键步骤，每个步骤要具体可行，用纯文本格式，不使用markdown符号。",
			query, discussion)
		temperature = 0.7
		maxTokens = 400
	} else {
		system = conciseSummaryPrompt
		user = fmt.Sprintf(
			"用户问题：%s\n\n专家讨论内容：\n%s\n\n请根据以上专家讨论内容，生成一个简洁活泼的总结。总字数严格控制在50字以内，结尾要引导用户继续提问，不要使用任何markdown格式符号。",
			query, discussion)
		temperature = 0.9
		maxTokens = 100
	}

	summary := a.llm.Complete(ctx, llm.Request{
		Messages: []models.ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	return CleanMarkdown(summary)
}

// CleanMarkdown strips the markdown markers the summary prompts forbid
// but models still occasionally emit.
func CleanMarkdown(text string) string {
	r := strings.NewReplacer(
		"**", "", "__", "", "~~", "",
		"*", "", "#", "", "`", "",
		"- ", "", "+ ", "", "> ", "",
	)
	return strings.TrimSpace(r.Replace(text))
}
