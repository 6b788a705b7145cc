// Package classifier scores an utterance as casual chat or a
// professional inquiry. Scoring is pure keyword/pattern matching over
// fixed rule tables; given the same tables the result is deterministic.
package classifier

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// patternBucket is one weighted group of substring patterns.
type patternBucket struct {
	name     string
	weight   float64
	patterns []string
}

// Casual buckets. Greetings weigh most, emotional expressions next,
// everything else counts once per hit.
var casualBuckets = []patternBucket{
	{"greetings", 3.0, []string{"你好", "您好", "嗨", "哈喽", "早上好", "下午好", "晚上好", "晚安"}},
	{"emotions", 2.0, []string{"哈哈", "嘿嘿", "呵呵", "哇", "哎呀", "真的", "太好了", "不错"}},
	{"simple_questions", 1.0, []string{"怎么样", "如何", "好吗", "是吗", "对吧", "呢"}},
	{"casual_responses", 1.0, []string{"嗯嗯", "是啊", "对对", "好的", "明白", "知道了", "谢谢"}},
	{"simple_praise", 1.0, []string{"厉害", "棒", "好", "不错", "赞", "牛", "强"}},
	{"personal_sharing", 1.0, []string{"我觉得", "我认为", "我想", "我喜欢", "我也是"}},
}

// Professional buckets. Detailed inquiries weigh most, knowledge
// seeking next, the remaining intents count 2 per hit.
var professionalBuckets = []patternBucket{
	{"detailed_inquiry", 3.0, []string{"详细", "具体", "怎么做", "如何制作", "步骤", "方法", "技巧", "要点"}},
	{"knowledge_seeking", 2.5, []string{"介绍", "讲解", "说说", "告诉我", "解释", "什么是", "为什么"}},
	{"comparison", 2.0, []string{"比较", "区别", "不同", "相比", "对比", "哪个好", "推荐"}},
	{"history_culture", 2.0, []string{"历史", "由来", "起源", "发展", "传统", "文化", "背景", "意义"}},
	{"technical_terms", 2.0, []string{"工艺", "技法", "材料", "结构", "特色", "特点", "原理"}},
}

var greetings = casualBuckets[0].patterns

// DomainKeywords resolves the persona keyword set used for
// domain-specific professional scoring. Registered once at startup by
// the expert registry.
type DomainKeywords func(domainID string) []string

// Classifier scores utterances against the fixed rule tables plus an
// optional per-domain keyword lookup.
type Classifier struct {
	domains DomainKeywords
}

// New creates a classifier. domains may be nil when no persona context
// is available.
func New(domains DomainKeywords) *Classifier {
	return &Classifier{domains: domains}
}

// Classify scores one utterance. domainID is optional; when set, hits
// of that persona's keyword set raise the professional score.
func (c *Classifier) Classify(utterance, domainID string) models.ClassificationResult {
	text := strings.TrimSpace(utterance)

	casual := c.casualScore(text)
	professional := c.professionalScore(text, domainID)

	contextType, confidence, reasoning := decide(text, casual, professional)

	return models.ClassificationResult{
		ContextType:       contextType,
		Confidence:        confidence,
		CasualScore:       casual,
		ProfessionalScore: professional,
		Reasoning:         reasoning,
	}
}

func (c *Classifier) casualScore(text string) float64 {
	score := 0.0
	for _, bucket := range casualBuckets {
		for _, p := range bucket.patterns {
			if strings.Contains(text, p) {
				score += bucket.weight
			}
		}
	}

	// Short utterances lean casual.
	if utf8.RuneCountInString(text) <= 10 {
		score += 1.0
	}

	score += float64(countEmoji(text))*0.5 + float64(strings.Count(text, "！")+strings.Count(text, "!"))*0.3

	return clamp(score)
}

func (c *Classifier) professionalScore(text, domainID string) float64 {
	score := 0.0
	for _, bucket := range professionalBuckets {
		for _, p := range bucket.patterns {
			if strings.Contains(text, p) {
				score += bucket.weight
			}
		}
	}

	if domainID != "" && c.domains != nil {
		for _, kw := range c.domains(domainID) {
			if strings.Contains(text, kw) {
				score += 2.0
			}
		}
	}

	// Long utterances lean professional.
	n := utf8.RuneCountInString(text)
	if n > 20 {
		score += 1.0
	}
	if n > 50 {
		score += 1.0
	}

	return clamp(score)
}

// decide applies the decision ladder: greeting short-circuit first,
// then threshold comparisons, then a length-based default.
func decide(text string, casual, professional float64) (string, float64, []string) {
	var reasoning []string

	for _, g := range greetings {
		if strings.Contains(text, g) {
			reasoning = append(reasoning, "包含问候语")
			if utf8.RuneCountInString(text) <= 15 {
				return models.ContextCasual, 0.9, append(reasoning, "简短问候，判定为闲聊")
			}
			break
		}
	}

	diff := professional - casual
	if diff < 0 {
		diff = -diff
	}

	if professional > casual {
		if professional >= 3.0 {
			confidence := min(0.8+(professional-casual)*0.05, 0.95)
			reasoning = append(reasoning, fmt.Sprintf("专业询问分数(%.1f) > 闲聊分数(%.1f)", professional, casual))
			return models.ContextProfessional, confidence, reasoning
		}
		if diff >= 1.0 {
			return models.ContextProfessional, 0.7, append(reasoning, "倾向于专业询问")
		}
	}

	if casual > professional && casual >= 2.0 {
		confidence := min(0.8+(casual-professional)*0.05, 0.95)
		reasoning = append(reasoning, fmt.Sprintf("闲聊分数(%.1f) > 专业询问分数(%.1f)", casual, professional))
		return models.ContextCasual, confidence, reasoning
	}

	if utf8.RuneCountInString(text) <= 10 {
		return models.ContextCasual, 0.6, append(reasoning, "文本较短，默认为闲聊")
	}
	return models.ContextProfessional, 0.6, append(reasoning, "无明确倾向，默认为专业询问")
}

// countEmoji counts runes in the common emoji blocks (emoticons,
// misc symbols & pictographs, transport).
func countEmoji(text string) int {
	n := 0
	for _, r := range text {
		switch {
		case r >= 0x1F600 && r <= 0x1F64F,
			r >= 0x1F300 && r <= 0x1F5FF,
			r >= 0x1F680 && r <= 0x1F6FF:
			n++
		}
	}
	return n
}

func clamp(score float64) float64 {
	if score > 10.0 {
		return 10.0
	}
	if score < 0 {
		return 0
	}
	return score
}
