package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const DefaultTimeout = 60 * time.Second

var ErrAPIKeyNotSet = errors.New("generation api key not set")

type OpenAIConfig struct {
	APIKey string
	// BaseURL points at any OpenAI-compatible endpoint, OpenRouter by default.
	BaseURL string
	Timeout time.Duration
	Referer string
	Title   string
}

// OpenAI is a Generator backed by the chat completions API.
type OpenAI struct {
	client  openai.Client
	timeout time.Duration
}

func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAI{client: openai.NewClient(opts...), timeout: timeout}, nil
}

func (c *OpenAI) Complete(ctx context.Context, p Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var msgs []openai.ChatCompletionMessageParamUnion
	if p.System != "" {
		msgs = append(msgs, openai.SystemMessage(p.System))
	}
	msgs = append(msgs, openai.UserMessage(p.User))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.Model),
		Messages: msgs,
	}
	if p.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.MaxTokens))
	}
	if p.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion %s: %w", p.Model, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", p.Model, ErrNoContent)
	}
	return completion.Choices[0].Message.Content, nil
}

var _ Generator = (*OpenAI)(nil)
