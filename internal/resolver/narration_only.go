package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/character"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/llm"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/narrator"
	"github.com/rs/zerolog/log"
)

// Pipeline resolves one player action into a complete result. The full
// three-stage resolver and the reduced narration-only mode both satisfy it;
// the caller picks one at construction time.
type Pipeline interface {
	Resolve(ctx context.Context, actionText string, sheet character.Sheet, gameCtx model.GameContext) model.Resolution
}

// NarrationOnly is the reduced pipeline: no interpretation, no dice, just a
// single generation pass describing the action as attempted. Useful when no
// parser model is configured.
type NarrationOnly struct {
	generator   llm.Generator
	temperature float64
	maxTokens   int
}

// NewNarrationOnly creates the reduced pipeline over the given generator.
func NewNarrationOnly(generator llm.Generator, temperature float64, maxTokens int) *NarrationOnly {
	return &NarrationOnly{generator: generator, temperature: temperature, maxTokens: maxTokens}
}

// Resolve narrates the action without adjudication. The result is reported
// as a success with no check attached.
func (n *NarrationOnly) Resolve(ctx context.Context, actionText string, sheet character.Sheet, gameCtx model.GameContext) model.Resolution {
	parsed := model.ParsedAction{
		IsPossible:    true,
		Intent:        strings.TrimSpace(actionText),
		Ability:       model.AbilityStrength,
		Modifiers:     []string{},
		RequiredItems: []string{},
	}
	check := model.CheckResult{
		Intent:  parsed.Intent,
		Ability: parsed.Ability,
		Outcome: model.OutcomeSuccess,
	}

	prompt := narrationPrompt(actionText, sheet.Name, gameCtx)
	raw, err := n.generator.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: n.temperature,
		MaxTokens:   n.maxTokens,
	})
	narrative := strings.TrimSpace(raw)
	if err != nil || narrative == "" {
		log.Warn().Err(err).Msg("resolver: narration-only generation failed, using template")
		narrative = narrator.FallbackNarrative(actionText, model.OutcomeSuccess, sheet.Name)
	}

	return model.Resolution{
		Action:    parsed,
		Check:     check,
		Narrative: narrative,
		Success:   true,
	}
}

func narrationPrompt(actionText, actor string, gameCtx model.GameContext) string {
	var b strings.Builder
	b.WriteString("You are a D&D Dungeon Master. Narrate the following player action in 2-4 sentences, second person, present tense.\n\n")
	b.WriteString(fmt.Sprintf("Actor: %s\n", actor))
	b.WriteString(fmt.Sprintf("Action: %q\n", actionText))
	if gameCtx.Location != "" {
		b.WriteString(fmt.Sprintf("Location: %s\n", gameCtx.Location))
	}
	if len(gameCtx.Environment) > 0 {
		b.WriteString(fmt.Sprintf("Environment: %s\n", strings.Join(gameCtx.Environment, ", ")))
	}
	return b.String()
}
