// Package parser turns free-text player actions into structured
// interpretations grounded in reference data.
package parser

import (
	"context"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/llm"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/prompts"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/srd"
	"github.com/rs/zerolog/log"
)

// ReferenceData is the slice of the reference cache the interpreter uses.
type ReferenceData interface {
	Categories(ctx context.Context) []string
	Load(ctx context.Context, categories []string) srd.ReferenceDataSet
	SkillsTable(ctx context.Context) map[string]srd.Skill
	DifficultyTable(ctx context.Context) map[string]int
	MediumDC(ctx context.Context) int
}

// Selector picks reference categories for an action.
type Selector interface {
	Select(ctx context.Context, actionText string, available []string) []string
}

// ActionInterpreter runs the two-phase structured parse: category selection
// and grounded extraction.
type ActionInterpreter struct {
	generator   llm.Generator
	selector    Selector
	data        ReferenceData
	temperature float64
	maxTokens   int
}

// NewActionInterpreter creates an interpreter over the given generator,
// selector, and reference data.
func NewActionInterpreter(generator llm.Generator, selector Selector, data ReferenceData, temperature float64, maxTokens int) *ActionInterpreter {
	return &ActionInterpreter{
		generator:   generator,
		selector:    selector,
		data:        data,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

const fallbackReason = "The action could not be interpreted against the rules. Try phrasing it as a single concrete attempt."

// Parse interprets a player action. It never fails: any phase error yields
// an impossible interpretation with safe defaults and a usable reason.
func (p *ActionInterpreter) Parse(ctx context.Context, actionText string, gameCtx model.GameContext) model.ParsedAction {
	categories := p.selector.Select(ctx, actionText, p.data.Categories(ctx))
	grounding := p.data.Load(ctx, categories)

	raw, err := p.generator.Generate(ctx, llm.Request{
		Prompt:      prompts.ActionInterpretation(actionText, gameCtx, grounding),
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		log.Warn().Err(err).Msg("parser: interpretation generation failed")
		return p.impossible(ctx)
	}

	extracted, err := extractStructured(raw)
	if err != nil {
		log.Warn().Err(err).Msg("parser: interpretation output unparseable")
		return p.impossible(ctx)
	}

	parsed := extracted.Action
	if extracted.DCLevel != "" {
		parsed.EstimatedDC = p.resolveDCLevel(ctx, extracted.DCLevel)
	}
	return p.validate(ctx, parsed)
}

// resolveDCLevel maps a difficulty-level name given in place of a numeric DC
// onto the table entry, defaulting to medium for unknown levels.
func (p *ActionInterpreter) resolveDCLevel(ctx context.Context, level string) int {
	if dc, ok := p.data.DifficultyTable(ctx)[srd.NormalizeIndex(level)]; ok {
		return dc
	}
	return p.data.MediumDC(ctx)
}

func (p *ActionInterpreter) impossible(ctx context.Context) model.ParsedAction {
	return p.validate(ctx, model.ParsedAction{
		IsPossible: false,
		Intent:     "unknown",
		Reason:     fallbackReason,
	})
}

// validate normalizes and enriches a parsed action so every field is
// present. It is idempotent: validating an already valid action changes
// nothing.
func (p *ActionInterpreter) validate(ctx context.Context, parsed model.ParsedAction) model.ParsedAction {
	if strings.TrimSpace(parsed.Intent) == "" {
		parsed.Intent = "unknown"
	}
	if _, ok := model.ParseAbility(string(parsed.Ability)); !ok {
		parsed.Ability = model.AbilityStrength
	}
	parsed.Skill = matchSkill(parsed.Skill, p.data.SkillsTable(ctx))

	table := p.data.DifficultyTable(ctx)
	if _, ok := table[string(parsed.EstimatedDifficulty)]; !ok {
		parsed.EstimatedDifficulty = model.DifficultyMedium
	}
	if parsed.EstimatedDC <= 0 {
		if dc, ok := table[string(parsed.EstimatedDifficulty)]; ok {
			parsed.EstimatedDC = dc
		} else {
			parsed.EstimatedDC = p.data.MediumDC(ctx)
		}
	}
	parsed.EstimatedDC = clampDC(parsed.EstimatedDC)

	if parsed.Modifiers == nil {
		parsed.Modifiers = []string{}
	}
	if parsed.RequiredItems == nil {
		parsed.RequiredItems = []string{}
	}
	if !parsed.IsPossible && strings.TrimSpace(parsed.Reason) == "" {
		parsed.Reason = fallbackReason
	}
	return parsed
}

// matchSkill resolves a claimed skill against the known skill set: exact key
// match first, then substring containment in either direction, else nil.
func matchSkill(claimed *string, skills map[string]srd.Skill) *string {
	if claimed == nil || strings.TrimSpace(*claimed) == "" {
		return nil
	}
	key := srd.NormalizeIndex(*claimed)
	if _, ok := skills[key]; ok {
		return &key
	}
	for known := range skills {
		if strings.Contains(key, known) || strings.Contains(known, key) {
			matched := known
			return &matched
		}
	}
	return nil
}

const (
	minDC = 5
	maxDC = 30
)

func clampDC(dc int) int {
	if dc < minDC {
		return minDC
	}
	if dc > maxDC {
		return maxDC
	}
	return dc
}
