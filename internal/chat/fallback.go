package chat

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

type keywordReply struct {
	keyword string
	reply   string
}

// Checked in order; the first keyword found in the message wins.
var keywordReplies = []keywordReply{
	{"你好", "你好！我是史迪仔的AI助手，很高兴为你服务！🤖"},
	{"hello", "Hello! I'm Stitch's AI assistant, nice to meet you! 🤖"},
	{"帮助", "我可以帮你：\n• 总结和分析笔记内容\n• 提供学习建议和计划\n• 回答各种问题\n• 协助整理思路"},
	{"总结", "我可以帮你总结笔记内容，请告诉我你想总结哪些笔记。"},
	{"学习", "学习建议：\n• 制定明确的学习目标\n• 使用番茄钟技术保持专注\n• 定期复习和总结\n• 保持良好的学习习惯"},
	{"计划", "制定计划的建议：\n• 设定SMART目标（具体、可测量、可达成、相关、有时限）\n• 将大任务分解为小任务\n• 合理安排时间\n• 留出缓冲时间"},
	{"番茄钟", "番茄钟是一种时间管理技术：\n• 25分钟专注工作\n• 5分钟短休息\n• 每4个番茄钟后长休息15分钟\n\n点击右上角的番茄钟按钮开始使用！🍅"},
	{"笔记", "关于笔记管理的建议：\n• 使用清晰的标题和标签\n• 定期整理和分类\n• 添加关键词便于搜索\n• 定期回顾重要内容"},
}

type compoundRule struct {
	allOf []string
	anyOf []string
	reply string
}

func (r compoundRule) matches(msg string) bool {
	for _, k := range r.allOf {
		if !strings.Contains(msg, k) {
			return false
		}
	}
	if len(r.anyOf) == 0 {
		return true
	}
	for _, k := range r.anyOf {
		if strings.Contains(msg, k) {
			return true
		}
	}
	return false
}

// Consulted after keywordReplies, also in order.
var compoundRules = []compoundRule{
	{
		allOf: []string{"总结", "笔记"},
		reply: "我可以帮你总结笔记内容！请告诉我：\n• 你想总结哪个时间段的笔记？\n• 有特定的主题或标签吗？\n• 需要什么样的总结格式？",
	},
	{
		allOf: []string{"建议"},
		reply: "我很乐意给你建议！请告诉我更多详细信息：\n• 你遇到了什么具体问题？\n• 你的目标是什么？\n• 你已经尝试过什么方法？",
	},
	{
		anyOf: []string{"时间", "管理"},
		reply: "时间管理的几个要点：\n• 优先级排序（重要且紧急的事情优先）\n• 使用番茄钟技术保持专注\n• 避免多任务处理\n• 定期休息和反思\n\n你可以尝试使用我们的番茄钟功能！",
	},
	{
		anyOf: []string{"学习方法", "如何学习"},
		reply: "高效学习方法推荐：\n• 主动学习：提问、总结、教授他人\n• 间隔重复：定期复习已学内容\n• 费曼技巧：用简单语言解释复杂概念\n• 思维导图：可视化知识结构\n• 实践应用：将理论与实际结合",
	},
}

var defaultReplies = []string{
	"这是一个很有趣的问题！让我想想... 🤔",
	"根据我的理解，这个问题需要更多的上下文信息。",
	"我建议你可以从以下几个角度来思考这个问题...",
	"这让我想到了一些相关的概念，或许对你有帮助。",
	"很好的问题！我觉得可以这样来分析...",
	"基于你的描述，我有一些想法可以分享。",
}

const defaultReplySuffix = "\n\n如果你有具体的问题，请详细描述，我会尽力帮助你！"

// Responder answers locally when the language model is unreachable.
type Responder struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewResponder() *Responder {
	return &Responder{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *Responder) Reply(message string) string {
	msg := strings.ToLower(strings.TrimSpace(message))

	for _, kr := range keywordReplies {
		if strings.Contains(msg, kr.keyword) {
			return kr.reply
		}
	}
	for _, rule := range compoundRules {
		if rule.matches(msg) {
			return rule.reply
		}
	}

	r.mu.Lock()
	i := r.rnd.Intn(len(defaultReplies))
	r.mu.Unlock()
	return defaultReplies[i] + defaultReplySuffix
}
