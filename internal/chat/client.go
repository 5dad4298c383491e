package chat

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	maxTokens   = 500
	temperature = 0.7
)

var ErrCompletionFailed = errors.New("chat completion failed")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer sends a conversation to a language model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type (
	completionReq struct {
		Model       string    `json:"model"`
		Messages    []Message `json:"messages"`
		MaxTokens   int       `json:"max_tokens"`
		Temperature float64   `json:"temperature"`
	}

	completionResp struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	http   *resty.Client
	model  string
	logger *zap.SugaredLogger
}

func NewClient(cfg *config.Config, l *zap.SugaredLogger) *Client {
	rc := resty.New().
		SetHostURL(strings.TrimRight(cfg.LLMBaseURL, "/")).
		SetTimeout(cfg.LLMTimeout).
		SetHeader("Content-Type", "application/json")
	if cfg.LLMAPIKey != "" {
		rc.SetAuthToken(cfg.LLMAPIKey)
	}

	return &Client{
		http:   rc,
		model:  cfg.LLMModel,
		logger: l,
	}
}

func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(completionReq{
			Model:       c.model,
			Messages:    messages,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		}).
		SetResult(&completionResp{}).
		Post("/chat/completions")
	if err != nil {
		return "", errors.Wrapf(ErrCompletionFailed, "post: %v", err)
	}
	if !resp.IsSuccess() {
		c.logger.Warnw("completion endpoint returned error", "status", resp.StatusCode(), "body", truncate(resp.String(), 200))
		return "", errors.Wrapf(ErrCompletionFailed, "status %d", resp.StatusCode())
	}

	result, ok := resp.Result().(*completionResp)
	if !ok || len(result.Choices) == 0 {
		return "", errors.Wrap(ErrCompletionFailed, "no choices in response")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
