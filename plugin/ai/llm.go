package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// ErrLLMDisabled is returned by the disabled service.
var ErrLLMDisabled = errors.New("llm collaborator disabled")

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// LLMService is the external text-completion collaborator.
type LLMService interface {
	// Chat performs synchronous chat. Implementations bound every attempt
	// with a timeout and retry with increasing backoff before giving up.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Ping makes one bounded attempt with no retry. Health checks use it.
	Ping(ctx context.Context) error
}

type llmService struct {
	client  *openai.Client
	config  *LLMConfig
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewLLMService creates a new LLMService. A disabled config yields a service
// that always returns ErrLLMDisabled.
func NewLLMService(cfg *LLMConfig, logger *slog.Logger) (LLMService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil || !cfg.Enabled {
		return disabledService{}, nil
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// DeepSeek is compatible with OpenAI API
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &llmService{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  logger,
	}, nil
}

func (s *llmService) Chat(ctx context.Context, messages []Message) (string, error) {
	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		llmMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Messages:    llmMessages,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	var result string
	err := s.doWithRetry(ctx, func(attemptCtx context.Context) error {
		resp, err := s.client.CreateChatCompletion(attemptCtx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}

	return result, nil
}

func (s *llmService) Ping(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	_, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.config.Model,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "ping"}},
		MaxTokens: 1,
	})
	if err != nil {
		return fmt.Errorf("llm ping failed: %w", err)
	}
	return nil
}

// doWithRetry executes fn with a per-attempt timeout and exponential backoff.
// A timed-out attempt is discarded; nothing from it is returned.
func (s *llmService) doWithRetry(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < s.config.MaxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt < s.config.MaxRetries-1 {
			waitTime := s.config.RetryBaseDelay << attempt
			s.logger.Debug("LLM request failed, retrying",
				"attempt", attempt+1,
				"wait_time", waitTime,
				"error", err)
			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

type disabledService struct{}

func (disabledService) Chat(context.Context, []Message) (string, error) {
	return "", ErrLLMDisabled
}

func (disabledService) Ping(context.Context) error {
	return ErrLLMDisabled
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}
