// Package narrator turns adjudicated checks into scene narration.
package narrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/character"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/llm"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/prompts"
	"github.com/rs/zerolog/log"
)

// Synthesizer narrates resolution outcomes. Generation failures fall back to
// fixed outcome-keyed templates, so the narrative is always non-empty.
type Synthesizer struct {
	generator   llm.Generator
	temperature float64
	maxTokens   int
}

// NewSynthesizer creates a synthesizer over the given generator.
func NewSynthesizer(generator llm.Generator, temperature float64, maxTokens int) *Synthesizer {
	return &Synthesizer{generator: generator, temperature: temperature, maxTokens: maxTokens}
}

// Narrate describes the outcome of an adjudicated action. It never fails.
func (s *Synthesizer) Narrate(ctx context.Context, actionText string, parsed model.ParsedAction, check model.CheckResult, sheet character.Sheet, gameCtx model.GameContext) string {
	raw, err := s.generator.Generate(ctx, llm.Request{
		Prompt:      prompts.Narration(actionText, parsed, check, sheet.Name, gameCtx),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err == nil {
		if narrative := strings.TrimSpace(raw); narrative != "" {
			return narrative
		}
		err = fmt.Errorf("empty narration")
	}

	log.Warn().Err(err).Str("outcome", string(check.Outcome)).Msg("narrator: generation failed, using template")
	return FallbackNarrative(actionText, check.Outcome, sheet.Name)
}

// FallbackNarrative renders the fixed template for an outcome.
func FallbackNarrative(actionText string, outcome model.Outcome, actor string) string {
	if strings.TrimSpace(actor) == "" {
		actor = "The adventurer"
	}
	action := strings.TrimSpace(actionText)
	if action == "" {
		action = "the attempt"
	}

	switch outcome {
	case model.OutcomeSuccess:
		return fmt.Sprintf("%s attempts to %s and succeeds cleanly. The moment passes without complication.", actor, action)
	case model.OutcomePartialSuccess:
		return fmt.Sprintf("%s attempts to %s and mostly manages it, though not without a hitch that may matter later.", actor, action)
	default:
		return fmt.Sprintf("%s attempts to %s, but the attempt falls short. The situation remains unchanged, and perhaps a little worse.", actor, action)
	}
}
