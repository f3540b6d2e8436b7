package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"neuromentor/internal/model"
)

const (
	DefaultBaseURL    = "https://api.deepseek.com"
	DefaultModel      = "deepseek-chat"
	DefaultMaxContext = 10
)

var (
	ErrProvider     = errors.New("ai provider request failed")
	ErrMissingToken = errors.New("ai api key is not configured")
)

// ProviderError wraps every failure of a completion call. It matches
// ErrProvider so callers never need to tell transport, auth or rate-limit
// failures apart.
type ProviderError struct {
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("deepseek api error: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

type ChatConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxContext int
	Timeout    time.Duration
}

type Reply struct {
	Text        string
	TotalTokens int
	Prompt      []model.HistoryEntry
}

type Client struct {
	api        *openai.Client
	model      string
	maxContext int
}

func NewClient(cfg ChatConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingToken
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxContext <= 0 {
		cfg.MaxContext = DefaultMaxContext
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:        openai.NewClientWithConfig(apiCfg),
		model:      cfg.Model,
		maxContext: cfg.MaxContext,
	}, nil
}

// GetReply sends the system prompt, the tail of history and the new message
// as a single non-streaming completion.
func (c *Client) GetReply(ctx context.Context, profile Profile, history []model.HistoryEntry, message string) (*Reply, error) {
	prompt := BuildMessages(profile, history, message, c.maxContext)

	messages := make([]openai.ChatCompletionMessage, 0, len(prompt))
	for _, entry := range prompt {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    entry.Role,
			Content: entry.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return nil, newProviderError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{StatusCode: http.StatusOK, Err: errors.New("empty llm choices")}
	}

	return &Reply{
		Text:        resp.Choices[0].Message.Content,
		TotalTokens: resp.Usage.TotalTokens,
		Prompt:      prompt,
	}, nil
}

func newProviderError(err error) *ProviderError {
	providerErr := &ProviderError{Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		providerErr.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		providerErr.StatusCode = reqErr.HTTPStatusCode
	}
	return providerErr
}
