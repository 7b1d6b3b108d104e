package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const defaultOpenAIKeyEnv = "OPENAI_API_KEY"

type openAIGenerator struct {
	cfg    config.ModelConfig
	client openai.Client
}

func newOpenAIGenerator(cfg config.ModelConfig) (Generator, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("openai model is required")
	}
	key, err := apiKey(cfg, defaultOpenAIKeyEnv)
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(key),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &openAIGenerator{cfg: cfg, client: openai.NewClient(opts...)}, nil
}

func (g *openAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	params := responses.ResponseNewParams{
		Model: g.cfg.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		params.Instructions = openai.String(req.SystemPrompt)
	}
	if req.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := g.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses.create: %w", err)
	}
	if msg := strings.TrimSpace(resp.Error.Message); msg != "" {
		return "", fmt.Errorf("openai response failed: %s", msg)
	}

	output := strings.TrimSpace(resp.OutputText())
	if output == "" {
		return "", fmt.Errorf("openai response did not contain output text")
	}
	return output, nil
}
