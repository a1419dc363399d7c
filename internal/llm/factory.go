package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/seatutor/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
// repo may be nil, in which case requests are only logged through logger.
func NewProvider(ctx context.Context, cfg Config, repo store.LLMRepo, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "bedrock":
		base, err = NewBedrockProvider(ctx, cfg.Bedrock)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → retry → logging → base
	logged := WithLogging(base, cfg.Provider, repo, logger)
	retried := WithRetry(logged, cfg.Retry, cfg.Timeout)

	return retried, nil
}
