// Package llm provides the text-generation capability used by the pipeline.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/config"
)

// Request is a single blocking generation call.
type Request struct {
	Prompt       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// Generator produces text from a prompt. Implementations may fail or time
// out; callers are expected to fall back locally rather than propagate.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// New constructs a generator for the configured provider.
func New(ctx context.Context, cfg config.ModelConfig) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return newGeminiGenerator(ctx, cfg)
	case config.ProviderOpenAI:
		return newOpenAIGenerator(cfg)
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// apiKey resolves the provider credential from the configured environment
// variable, falling back to the provider default.
func apiKey(cfg config.ModelConfig, defaultEnv string) (string, error) {
	env := strings.TrimSpace(cfg.APIKeyEnv)
	if env == "" {
		env = defaultEnv
	}
	key := strings.TrimSpace(os.Getenv(env))
	if key == "" {
		return "", fmt.Errorf("api key is required (set %s or api_key_env)", env)
	}
	return key, nil
}
