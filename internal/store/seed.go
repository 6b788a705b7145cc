package store

import "github.com/lingnanlabs/guangfu-agents/pkg/models"

// seedKnowledge is the built-in culture-fact table, keyed by expert
// domain. Memory and Redis stores serve it directly; the PostgreSQL
// store upserts it on migration so deployments start non-empty.
var seedKnowledge = []models.KnowledgeItem{
	{Category: "cantonese_opera", Title: "历史发展", Content: "粤剧起源于明代，是广东地方戏曲，融合了南音、粤讴、木鱼歌等民间艺术形式。经过数百年的发展，形成了独特的艺术风格。"},
	{Category: "cantonese_opera", Title: "表演艺术", Content: "粤剧表演包括唱、念、做、打四大基本功，注重身段和表情的细腻表现。演员通过精湛的技艺和细腻的表演，将故事情节和人物情感生动地呈现在观众面前。"},
	{Category: "cantonese_opera", Title: "唱腔特点", Content: "粤剧唱腔以梆子、二黄为主，还有南音、粤讴等，音韵优美，富有地方特色。唱腔丰富多样，既有激昂慷慨的梆子，也有婉转悠扬的二黄。"},
	{Category: "cantonese_opera", Title: "经典剧目", Content: "《帝女花》、《紫钗记》、《牡丹亭惊梦》、《西厢记》等都是粤剧经典剧目，深受观众喜爱。"},
	{Category: "cantonese_opera", Title: "著名演员", Content: "著名粤剧演员有红线女、马师曾、薛觉先、白驹荣等，他们为粤剧艺术发展做出重要贡献。"},

	{Category: "architecture", Title: "骑楼文化", Content: "骑楼是广府建筑的重要特色，一楼为商铺，二楼以上为住宅，形成独特的商业街景。这种建筑形式既实用又美观，体现了广府人民的智慧。"},
	{Category: "architecture", Title: "岭南园林", Content: "岭南园林以小巧精致著称，如余荫山房、清晖园等，体现了岭南文化的特色。布局紧凑、装饰精美、意境深远。"},
	{Category: "architecture", Title: "传统民居", Content: "广府传统民居以三间两廊、四点金等格局为主，注重通风采光和防潮，体现了广府人民对居住环境的智慧设计。"},
	{Category: "architecture", Title: "建筑装饰", Content: "广府建筑装饰丰富，有木雕、石雕、砖雕、灰塑等，工艺精湛，寓意深刻，是广府文化的重要载体。"},

	{Category: "culinary", Title: "广府菜", Content: "广府菜是粤菜的重要组成部分，以清淡鲜美、原汁原味著称，注重食材的新鲜和烹饪的精细。"},
	{Category: "culinary", Title: "茶楼文化", Content: "广府茶楼文化历史悠久，早茶、下午茶是广府人重要的社交方式，体现了悠闲的生活态度。"},
	{Category: "culinary", Title: "传统小吃", Content: "广府传统小吃丰富多样，如肠粉、虾饺、烧卖、叉烧包等，制作精细，口味独特。"},
	{Category: "culinary", Title: "饮食习俗", Content: "广府饮食习俗体现了岭南文化的特色，如煲汤文化、糖水文化等，注重养生和美味。"},
	{Category: "culinary", Title: "烹饪技艺", Content: "广府烹饪技艺精湛，有蒸、炒、炖、煲等多种技法，注重火候和调味。"},

	{Category: "festival", Title: "春节习俗", Content: "广府春节习俗丰富，有贴春联、放鞭炮、拜年、舞狮等，体现了浓厚的节日氛围。"},
	{Category: "festival", Title: "端午节", Content: "广府端午节有赛龙舟、吃粽子、挂艾草等习俗，龙舟竞渡是重要的民俗活动。"},
	{Category: "festival", Title: "中秋节", Content: "广府中秋节有赏月、吃月饼、玩花灯等习俗，体现了团圆和思乡之情。"},
	{Category: "festival", Title: "重阳节", Content: "广府重阳节有登高、赏菊、吃重阳糕等习俗，体现了敬老和祈福的寓意。"},

	{Category: "tea_culture", Title: "工夫茶", Content: "工夫茶讲究水、火、器、茶四要，冲泡程序严谨，是广府人待客的重要礼仪。"},
	{Category: "tea_culture", Title: "叹早茶", Content: "叹早茶是广府人独特的生活方式，一盅两件，慢慢品味，既是饮食也是社交。"},

	{Category: "craft", Title: "广绣", Content: "广绣是四大名绣之一，以构图饱满、色彩浓艳、针法多变著称，题材多为花鸟鱼虫。"},
	{Category: "craft", Title: "广彩", Content: "广彩是广州织金彩瓷的简称，始于清代，曾随十三行外销欧洲，金碧辉煌，中西合璧。"},

	{Category: "literature", Title: "岭南诗派", Content: "岭南诗派以张九龄为先声，历代名家辈出，诗风雄直，多咏岭南风物。"},
	{Category: "literature", Title: "粤讴", Content: "粤讴是用粤语演唱的民间说唱文学，语言通俗，情感真挚，是岭南文学的独特形式。"},

	{Category: "tcm", Title: "凉茶", Content: "凉茶是岭南人应对湿热气候的养生智慧，王老吉、廿四味等配方代代相传，已列入非遗名录。"},
	{Category: "tcm", Title: "煲汤", Content: "老火靓汤讲究药食同源，按时令搭配药材食材，文火慢煲，是广府家庭的养生日常。"},
}

// domainFallbacks are returned by knowledge retrieval when no seeded
// item matches the query.
var domainFallbacks = map[string]string{
	"cantonese_opera": "粤剧是世界非物质文化遗产，集唱做念打于一身，是广府文化的艺术瑰宝。",
	"architecture":    "广府建筑因应岭南湿热气候而生，骑楼、镬耳屋、岭南园林各具匠心。",
	"culinary":        "广府美食文化是岭南文化的重要组成部分，体现了广府人民对生活的热爱和追求。",
	"festival":        "广府节庆民俗承载着宗族情感与社区凝聚力，一年四季热闹不断。",
	"tea_culture":     "饮茶是广府人生活中不可或缺的部分，茶香里蕴含着处世的从容。",
	"craft":           "广府传统手工艺精益求精，广绣广彩名扬海外，承载着匠人的智慧。",
	"literature":      "岭南文学源远流长，诗词歌赋与民间说唱共同描绘着广府风情。",
	"tcm":             "岭南中医药文化讲究药食同源，凉茶煲汤皆是养生智慧。",
}

// DomainFallback returns the default snippet for a domain, or a generic
// line for unknown domains.
func DomainFallback(domainID string) string {
	if s, ok := domainFallbacks[domainID]; ok {
		return s
	}
	return "广府文化是岭南文化的重要组成部分，底蕴深厚，魅力独特。"
}
