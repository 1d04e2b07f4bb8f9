package llm

import (
	"context"
	"fmt"

	"docqa/config"
)

// Provider abstracts a chat completion model.
type Provider interface {
	// GenerateCompletion returns free-form text for the prompt.
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
	// GenerateJSON asks the model for a JSON object response. The returned
	// string is the raw model output and may still need cleaning.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	GetProviderType() string
}

// GatewayError wraps a failed model call with the operation that caused it.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("llm %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// NewLLMProvider creates a provider from configuration.
func NewLLMProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "dashscope", "qwen", "":
		// dashscope and qwen expose OpenAI-compatible endpoints via base_url
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
