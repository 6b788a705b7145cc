// Package experts hosts the persona registry, the keyword router and
// the persona agents that wrap the LLM gateway.
package experts

import (
	"strings"

	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// Expert identifiers, in registry order. Registration order is fixed
// and determines both routing and downstream presentation order.
const (
	CantoneseOpera = "cantonese_opera"
	Architecture   = "architecture"
	Culinary       = "culinary"
	Festival       = "festival"
	TeaCulture     = "tea_culture"
	Craft          = "craft"
	Literature     = "literature"
	TCM            = "tcm"
)

// AmbassadorID identifies the coordinating persona. It is not part of
// the routable registry.
const AmbassadorID = "ambassador"

// profiles is the static 8-domain registry, in definition order.
var profiles = []models.ExpertProfile{
	{
		ID:          CantoneseOpera,
		DisplayName: "粤剧专家",
		Title:       "粤剧艺术传承",
		Icon:        "🎭",
		Description: "精通粤剧历史、表演艺术、唱腔特点",
		Specialties: []string{"粤剧历史", "表演艺术", "唱腔特点", "经典剧目"},
		PersonaKeywords: []string{
			"粤剧", "戏曲", "表演", "唱腔", "行当", "脸谱",
		},
		SystemPrompt: operaPrompt,
	},
	{
		ID:          Architecture,
		DisplayName: "建筑专家",
		Title:       "建筑工艺传统",
		Icon:        "🏗️",
		Description: "了解广府传统建筑、骑楼文化、岭南园林",
		Specialties: []string{"骑楼文化", "岭南园林", "传统民居", "建筑装饰"},
		PersonaKeywords: []string{
			"建筑", "骑楼", "园林", "民居", "祠堂", "庙宇",
		},
		SystemPrompt: architecturePrompt,
	},
	{
		ID:          Culinary,
		DisplayName: "美食专家",
		Title:       "广府美食文化",
		Icon:        "🍜",
		Description: "熟悉广府菜系、茶楼文化、传统小吃",
		Specialties: []string{"广府菜系", "茶楼文化", "传统小吃", "饮食习俗", "烹饪技艺"},
		PersonaKeywords: []string{
			"美食", "菜系", "小吃", "点心",
		},
		SystemPrompt: culinaryPrompt,
	},
	{
		ID:          Festival,
		DisplayName: "节庆专家",
		Title:       "节庆民俗文化",
		Icon:        "🎊",
		Description: "掌握广府传统节庆、民俗活动、文化仪式",
		Specialties: []string{"传统节庆", "民俗活动", "文化仪式", "节日寓意"},
		PersonaKeywords: []string{
			"节庆", "民俗", "传统", "习俗", "庆典", "仪式",
		},
		SystemPrompt: festivalPrompt,
	},
	{
		ID:          TeaCulture,
		DisplayName: "茶文化专家",
		Title:       "茶艺茶道文化",
		Icon:        "🍵",
		Description: "精通茶艺茶道、茶叶品种、茶具鉴赏、饮茶习俗",
		Specialties: []string{"茶艺茶道", "茶叶品种", "茶具鉴赏", "饮茶习俗"},
		PersonaKeywords: []string{
			"茶文化", "茶艺", "茶道", "茶叶", "品茶", "工夫茶", "乌龙茶",
			"单丛", "水仙", "普洱", "铁观音", "龙井", "绿茶", "红茶",
		},
		SystemPrompt: teaPrompt,
	},
	{
		ID:          Craft,
		DisplayName: "传统手工艺专家",
		Title:       "传统手工技艺",
		Icon:        "🎨",
		Description: "精通广绣、广彩、雕刻等传统技艺",
		Specialties: []string{"广绣", "广彩", "木雕", "石雕", "牙雕"},
		PersonaKeywords: []string{
			"广绣", "广彩", "绣", "雕刻", "木雕", "石雕", "牙雕", "工艺", "技艺",
		},
		SystemPrompt: craftPrompt,
	},
	{
		ID:          Literature,
		DisplayName: "诗词文学专家",
		Title:       "岭南诗词文学",
		Icon:        "📝",
		Description: "精通古典诗词、岭南文学、文学鉴赏",
		Specialties: []string{"古典诗词", "岭南文学", "文学鉴赏"},
		PersonaKeywords: []string{
			"诗词", "文学", "诗歌", "古文", "诗句", "诗词鉴赏", "古典",
		},
		SystemPrompt: literaturePrompt,
	},
	{
		ID:          TCM,
		DisplayName: "中医药专家",
		Title:       "中医养生文化",
		Icon:        "🌿",
		Description: "精通中医理论、养生保健、食疗文化",
		Specialties: []string{"中医理论", "养生保健", "食疗文化", "岭南药材"},
		PersonaKeywords: []string{
			"中医", "中药", "养生", "食疗", "经络", "气血", "穴位", "药材",
		},
		SystemPrompt: tcmPrompt,
	},
}

// broadTriggers mark a query as a general request: the router then
// selects the full registry regardless of per-domain matches.
var broadTriggers = []string{"广府", "文化", "传统", "历史", "介绍"}

// Registry holds the static expert profiles and their live agents.
type Registry struct {
	agents map[string]*Agent
	order  []string
}

// NewRegistry builds agents for every profile using the shared
// dependencies. deps.LLM must be non-nil; the rest are optional.
func NewRegistry(deps AgentDeps) *Registry {
	r := &Registry{agents: make(map[string]*Agent, len(profiles))}
	for _, p := range profiles {
		r.agents[p.ID] = newAgent(p, deps)
		r.order = append(r.order, p.ID)
	}
	return r
}

// Profiles returns the registry's profiles in definition order.
func (r *Registry) Profiles() []models.ExpertProfile {
	out := make([]models.ExpertProfile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.agents[id].Profile)
	}
	return out
}

// Agent returns the live persona for an expert ID, or nil.
func (r *Registry) Agent(id string) *Agent { return r.agents[id] }

// DisplayName resolves an expert ID to its presentation name.
// Unknown IDs map to themselves.
func (r *Registry) DisplayName(id string) string {
	if a, ok := r.agents[id]; ok {
		return a.Profile.DisplayName
	}
	return id
}

// PersonaKeywords resolves a domain's keyword set for the classifier.
func (r *Registry) PersonaKeywords(domainID string) []string {
	if a, ok := r.agents[domainID]; ok {
		return a.Profile.PersonaKeywords
	}
	return nil
}

// Route maps an utterance to the relevant expert subset, in registry
// order. Routing never returns an empty set: with no domain match, or
// when the utterance carries a broad trigger word, the full registry
// is selected.
func (r *Registry) Route(utterance string) []string {
	var selected []string
	for _, id := range r.order {
		for _, kw := range r.agents[id].Profile.PersonaKeywords {
			if strings.Contains(utterance, kw) {
				selected = append(selected, id)
				break
			}
		}
	}

	broad := false
	for _, t := range broadTriggers {
		if strings.Contains(utterance, t) {
			broad = true
			break
		}
	}

	if len(selected) == 0 || broad {
		return append([]string(nil), r.order...)
	}
	return selected
}
