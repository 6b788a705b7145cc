// Package formatter re-flows a persona's finished reply into a
// presentational layout: an emoji-sectioned card when the reply follows
// the iconified point-list convention, a timeline for itinerary-like
// answers, and a generic sectioned card otherwise. It never alters the
// semantic content, only re-sections it.
package formatter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lingnanlabs/guangfu-agents/pkg/models"
)

// Structure parses rawText into a renderable layout. Pure function of
// (rawText, domainID): the same input always yields the same sections
// and icon assignments.
func Structure(rawText, domainID string) models.Render {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return models.Render{Layout: models.LayoutCard}
	}

	if isEmojiCard(text) {
		return parseEmojiCard(text)
	}
	if isTimeline(text) {
		return parseTimeline(text)
	}
	return parseCard(text, domainID)
}

// ── Emoji-sectioned card ────────────────────────────────────

var (
	emojiTitleRe   = regexp.MustCompile(`(?m)^##\s*📌\s*(.+)$`)
	emojiSectionRe = regexp.MustCompile(`(?m)^(🔷|🔶|🔹|💡)\s*\*\*(.+?)\*\*\s*$`)
)

// isEmojiCard detects the point-list convention the professional prompt
// variant asks for. Detection is structural: the markers themselves,
// not their wording.
func isEmojiCard(text string) bool {
	return emojiTitleRe.MatchString(text) || emojiSectionRe.MatchString(text)
}

func parseEmojiCard(text string) models.Render {
	render := models.Render{Layout: models.LayoutEmojiCard}

	if m := emojiTitleRe.FindStringSubmatch(text); m != nil {
		render.Title = strings.TrimSpace(m[1])
	}

	lines := strings.Split(text, "\n")
	var current *models.Section
	flush := func() {
		if current != nil {
			current.Content = strings.TrimSpace(current.Content)
			render.Sections = append(render.Sections, *current)
			current = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" || emojiTitleRe.MatchString(trimmed) {
			continue
		}
		if m := emojiSectionRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			current = &models.Section{Icon: m[1], Title: strings.TrimSpace(m[2])}
			continue
		}
		if current != nil {
			if current.Content != "" {
				current.Content += "\n"
			}
			current.Content += normalizeEmphasis(trimmed)
		}
	}
	flush()
	return render
}

// ── Timeline ────────────────────────────────────────────────

// timePeriods in presentation order, with their icons.
var timePeriods = []struct {
	period string
	icon   string
}{
	{"清晨", "☀️"},
	{"早晨", "🌅"},
	{"上午", "🏛️"},
	{"中午", "🍽️"},
	{"下午", "🏠"},
	{"傍晚", "🛍️"},
	{"夜晚", "🌙"},
	{"深夜", "🌌"},
}

var itineraryWords = []string{"一日游", "行程", "时间安排", "游览路线", "时光", "时段"}

// activityWords pick the line used as an entry's title.
var activityWords = []string{"茶楼", "文化", "美食", "购物", "漫步", "夜景"}

// isTimeline reports whether the text reads like an itinerary: either
// itinerary vocabulary, or at least two distinct time-of-day markers.
func isTimeline(text string) bool {
	for _, w := range itineraryWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	distinct := 0
	for _, tp := range timePeriods {
		if strings.Contains(text, tp.period) {
			distinct++
		}
	}
	return distinct >= 2
}

func parseTimeline(text string) models.Render {
	render := models.Render{
		Layout:   models.LayoutTimeline,
		Title:    "广府西关一日游",
		Subtitle: "品味节庆文化，感受广府韵味",
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > 0 {
		first := strings.TrimSpace(lines[0])
		if strings.Contains(first, "一日游") || strings.Contains(first, "行程") || strings.Contains(first, "路线") {
			render.Title = first
			lines = lines[1:]
			if len(lines) > 0 {
				second := strings.TrimSpace(lines[0])
				if second != "" && utf8.RuneCountInString(second) < 50 {
					render.Subtitle = second
					lines = lines[1:]
				}
			}
		}
	}

	var current *models.TimelineEntry
	flush := func() {
		if current != nil {
			finishTimelineEntry(current)
			render.Timeline = append(render.Timeline, *current)
			current = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		matched := false
		for _, tp := range timePeriods {
			if strings.Contains(trimmed, tp.period) {
				flush()
				current = &models.TimelineEntry{
					Period:  tp.period,
					Icon:    tp.icon,
					Content: normalizeEmphasis(trimmed),
				}
				matched = true
				break
			}
		}
		if !matched && current != nil {
			current.Content += "\n" + normalizeEmphasis(trimmed)
		}
	}
	flush()
	return render
}

// finishTimelineEntry picks the entry's title from the first content
// line carrying an activity word, defaulting to "X时光".
func finishTimelineEntry(e *models.TimelineEntry) {
	for _, line := range strings.Split(e.Content, "\n") {
		for _, w := range activityWords {
			if strings.Contains(line, w) {
				e.Title = strings.TrimSpace(line)
				return
			}
		}
	}
	e.Title = e.Period + "时光"
}

// ── Generic sectioned card ──────────────────────────────────

// titleRules classify a line as a section title, first match wins.
var titleRules = []struct {
	name string
	re   *regexp.Regexp
}{
	{"heading", regexp.MustCompile(`^#{1,6}\s+`)},
	{"bold", regexp.MustCompile(`^【[^】]+】$`)},
	{"stop", regexp.MustCompile(`^第[一二三四五六七八九十\d]+[站步章节]`)},
	{"emoji", regexp.MustCompile(`^[🎯🌟📍🔷🔶🔹💡⭐✨🎊🎉🎭🏮🍽️🏗️]`)},
	{"number", regexp.MustCompile(`^\d+[.、]\s*`)},
	{"cjk-number", regexp.MustCompile(`^[一二三四五六七八九十][、．]\s*`)},
}

var titleKeywords = []string{
	"推荐", "介绍", "特色", "亮点", "重点", "要点",
	"路线", "行程", "安排", "计划", "攻略",
	"美食", "小吃", "茶点", "甜品", "菜品",
	"表演", "节目", "活动", "庆典", "仪式",
	"建筑", "景点", "地点", "场所", "位置",
	"工艺", "技法", "制作", "步骤", "方法",
	"历史", "文化", "传统", "故事", "背景",
	"总结", "小贴士", "注意事项", "温馨提示",
}

// sectionIcons map title keywords to icons, in match priority order.
var sectionIcons = []struct {
	keyword string
	icon    string
}{
	{"站", "📍"}, {"地点", "📍"}, {"位置", "📍"}, {"场所", "🏛️"},
	{"美食", "🍽️"}, {"小吃", "🥟"}, {"茶点", "🍵"}, {"甜品", "🧁"}, {"菜品", "🍜"},
	{"表演", "🎭"}, {"节目", "🎪"}, {"活动", "🎊"}, {"庆典", "🎉"}, {"仪式", "🙏"},
	{"建筑", "🏗️"}, {"景点", "🏛️"}, {"园林", "🌸"}, {"街道", "🛤️"},
	{"工艺", "🎨"}, {"技法", "🔨"}, {"制作", "👨‍🍳"}, {"步骤", "📋"},
	{"历史", "📜"}, {"文化", "📚"}, {"传统", "🏮"}, {"故事", "📖"},
	{"推荐", "⭐"}, {"特色", "✨"}, {"亮点", "🌟"}, {"总结", "💡"},
	{"贴士", "💭"}, {"提示", "⚠️"}, {"注意", "❗"},
}

// domainIcons are the per-domain fallbacks when no keyword matches.
var domainIcons = map[string]string{
	"culinary":        "🍽️",
	"cantonese_opera": "🎭",
	"festival":        "🎊",
	"architecture":    "🏗️",
}

const defaultSectionIcon = "📝"

func parseCard(text, domainID string) models.Render {
	render := models.Render{Layout: models.LayoutCard}

	current := models.Section{Title: "主要内容"}
	var sections []models.Section
	flush := func() {
		if strings.TrimSpace(current.Content) != "" {
			current.Content = strings.TrimSpace(current.Content)
			sections = append(sections, current)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := normalizeEmphasis(strings.TrimSpace(line))
		if trimmed == "" {
			continue
		}
		if isTitleLine(trimmed) {
			flush()
			current = models.Section{Title: cleanTitle(trimmed)}
			continue
		}
		if current.Content != "" {
			current.Content += "\n"
		}
		current.Content += trimmed
	}
	flush()

	if len(sections) == 0 {
		sections = []models.Section{{Title: "详细介绍", Content: normalizeEmphasis(text)}}
	}
	for i := range sections {
		sections[i].Icon = sectionIcon(sections[i].Title, domainID)
	}
	render.Sections = sections
	return render
}

func isTitleLine(line string) bool {
	for _, rule := range titleRules {
		if rule.re.MatchString(line) {
			return true
		}
	}
	for _, kw := range titleKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

var (
	headingMarkRe = regexp.MustCompile(`^#{1,6}\s+`)
	boldWrapRe    = regexp.MustCompile(`^【([^】]+)】$`)
	numberMarkRe  = regexp.MustCompile(`^\d+[.、]\s*`)
	cjkNumberRe   = regexp.MustCompile(`^[一二三四五六七八九十][、．]\s*`)
)

func cleanTitle(line string) string {
	line = headingMarkRe.ReplaceAllString(line, "")
	line = boldWrapRe.ReplaceAllString(line, "$1")
	line = numberMarkRe.ReplaceAllString(line, "")
	line = cjkNumberRe.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

func sectionIcon(title, domainID string) string {
	for _, si := range sectionIcons {
		if strings.Contains(title, si.keyword) {
			return si.icon
		}
	}
	if icon, ok := domainIcons[domainID]; ok {
		return icon
	}
	return defaultSectionIcon
}

// ── Emphasis normalization ──────────────────────────────────

var (
	boldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)
	codeRe   = regexp.MustCompile("`([^`]+)`")
	strayRe  = regexp.MustCompile(`\*+`)
)

// normalizeEmphasis replaces markdown emphasis with bracket
// conventions. Stray markers that never pair up are deleted outright.
func normalizeEmphasis(text string) string {
	text = boldRe.ReplaceAllString(text, "【$1】")
	text = italicRe.ReplaceAllString(text, "《$1》")
	text = codeRe.ReplaceAllString(text, "「$1」")
	return strayRe.ReplaceAllString(text, "")
}
