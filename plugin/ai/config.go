package ai

import (
	"errors"
	"time"

	"github.com/hrygo/venuebook/internal/profile"
	"github.com/hrygo/venuebook/plugin/ai/timeout"
)

// LLMConfig represents the external collaborator configuration.
type LLMConfig struct {
	Enabled     bool
	Provider    string  // deepseek, openai
	Model       string  // deepseek-chat
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 512
	Temperature float32 // default: 0.1

	// Timeout bounds one attempt; MaxRetries counts attempts.
	Timeout           time.Duration
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RequestsPerSecond float64
}

// NewLLMConfigFromProfile creates LLM config from profile.
func NewLLMConfigFromProfile(p *profile.Profile) *LLMConfig {
	cfg := &LLMConfig{
		Enabled:           p.IsAIEnabled(),
		Provider:          p.AIProvider,
		Model:             p.AIModel,
		APIKey:            p.AIAPIKey,
		BaseURL:           p.AIBaseURL,
		MaxTokens:         512,
		Temperature:       0.1,
		Timeout:           p.AITimeout,
		MaxRetries:        p.AIMaxRetries,
		RetryBaseDelay:    timeout.LLMRetryBaseDelay,
		RequestsPerSecond: p.AIRequestsPerSecond,
	}
	cfg.applyDefaults()
	return cfg
}

func (c *LLMConfig) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = timeout.LLMCallTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = timeout.LLMMaxRetries
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = timeout.LLMRetryBaseDelay
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = timeout.LLMRequestsPerSecond
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 512
	}
}

// Validate validates the configuration.
func (c *LLMConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	switch c.Provider {
	case "deepseek", "openai":
	case "":
		return errors.New("LLM provider is required")
	default:
		return errors.New("unsupported LLM provider: " + c.Provider)
	}

	if c.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.Model == "" {
		return errors.New("LLM model is required")
	}
	return nil
}
