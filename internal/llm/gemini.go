package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/config"
	"google.golang.org/genai"
)

const defaultGeminiKeyEnv = "GEMINI_API_KEY"

type geminiGenerator struct {
	cfg    config.ModelConfig
	client *genai.Client
}

func newGeminiGenerator(ctx context.Context, cfg config.ModelConfig) (Generator, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("gemini model is required")
	}
	key, err := apiKey(cfg, defaultGeminiKeyEnv)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: key,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &geminiGenerator{cfg: cfg, client: client}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini response did not contain output text")
	}
	return text, nil
}
