package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	systemPrompt = "你是史迪仔笔记应用的AI助手。你的任务是帮助用户管理笔记、提供学习建议、回答问题。请用友好、有帮助的语气回答，并尽量提供实用的建议。"
	polishPrompt = "请帮我润色以下文本，使其更加流畅、准确、有条理。保持原意不变，但提升表达质量：\n\n%s"
	tagsPrompt   = "请为以下内容生成3-5个相关的标签，标签应该简洁明了，能够概括内容的主要主题。请只返回标签，用逗号分隔：\n\n%s"

	apologyReply = "抱歉，我现在遇到了一些技术问题，请稍后再试。"

	// Number of prior turns replayed to the model.
	contextTurns = 4
)

const (
	SuggestionGeneral  = "general"
	SuggestionStudy    = "study"
	SuggestionOrganize = "organize"
)

var ErrEmptyInput = errors.New("input is empty")

var Module = fx.Provide(
	NewClient,
	NewResponder,
	func(c *Client) Completer { return c },
	NewService,
)

var suggestions = map[string][]string{
	SuggestionStudy: {
		"建议使用番茄钟技术，25分钟专注学习，5分钟休息",
		"定期回顾和总结学过的内容，加深记忆",
		"尝试用自己的话重新表述学到的概念",
		"制作思维导图来整理知识结构",
	},
	SuggestionOrganize: {
		"为笔记添加清晰的标签和分类",
		"定期整理和归档旧笔记",
		"使用统一的笔记格式和结构",
		"创建笔记索引便于快速查找",
	},
	SuggestionGeneral: {
		"保持每日记录的习惯",
		"定期回顾和反思",
		"设定明确的学习目标",
		"合理安排时间和任务优先级",
	},
}

// Turn is one earlier message of the conversation. Type is "user", or "ai"/"assistant".
type Turn struct {
	Type    string
	Content string
}

type Service struct {
	completer Completer
	fallback  *Responder
	logger    *zap.SugaredLogger
}

func NewService(c Completer, r *Responder, l *zap.SugaredLogger) *Service {
	return &Service{
		completer: c,
		fallback:  r,
		logger:    l,
	}
}

// Chat asks the model and falls back to the local responder on any failure.
func (s *Service) Chat(ctx context.Context, message string, history []Turn) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyInput
	}

	reply, err := s.completer.Complete(ctx, buildMessages(message, history))
	if err == nil {
		return reply, nil
	}

	s.logger.Warnw("chat completion failed, using local responder", "error", err, "context_length", len(history))
	return s.localReply(message), nil
}

// Polish returns the model's rewrite of text verbatim.
func (s *Service) Polish(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	out, err := s.completer.Complete(ctx, buildMessages(fmt.Sprintf(polishPrompt, text), nil))
	if err != nil {
		return "", errors.Wrap(err, "polish")
	}
	return out, nil
}

// GenerateTags asks the model for comma separated tags.
func (s *Service) GenerateTags(ctx context.Context, content string) ([]string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyInput
	}

	out, err := s.completer.Complete(ctx, buildMessages(fmt.Sprintf(tagsPrompt, content), nil))
	if err != nil {
		return nil, errors.Wrap(err, "generate tags")
	}
	return splitTags(out), nil
}

// Suggestions returns the canned list for kind; unknown kinds get the general list.
func (s *Service) Suggestions(kind string) (string, []string) {
	list, ok := suggestions[kind]
	if !ok {
		kind = SuggestionGeneral
		list = suggestions[SuggestionGeneral]
	}
	out := make([]string, len(list))
	copy(out, list)
	return kind, out
}

func (s *Service) localReply(message string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("local responder panicked", "panic", r)
			reply = apologyReply
		}
	}()
	return s.fallback.Reply(message)
}

func buildMessages(message string, history []Turn) []Message {
	messages := []Message{{Role: RoleSystem, Content: systemPrompt}}

	if len(history) > contextTurns {
		history = history[len(history)-contextTurns:]
	}
	for _, turn := range history {
		switch turn.Type {
		case "user":
			messages = append(messages, Message{Role: RoleUser, Content: turn.Content})
		case "ai", "assistant":
			messages = append(messages, Message{Role: RoleAssistant, Content: turn.Content})
		}
	}

	return append(messages, Message{Role: RoleUser, Content: message})
}

func splitTags(raw string) []string {
	tags := make([]string, 0)
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
