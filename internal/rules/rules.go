// Package rules adjudicates parsed actions against the 5e check mechanics.
package rules

import (
	"context"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/character"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/dice"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/srd"
	"github.com/rs/zerolog/log"
)

// ReferenceTables is the slice of the reference cache the evaluator consults.
type ReferenceTables interface {
	SkillsTable(ctx context.Context) map[string]srd.Skill
	ActionsTable(ctx context.Context) map[string]srd.Action
	DifficultyTable(ctx context.Context) map[string]int
	MediumDC(ctx context.Context) int
}

// Evaluator rolls ability checks for parsed actions. The zero Seed rolls
// randomly; a fixed Seed makes every evaluation deterministic.
type Evaluator struct {
	tables ReferenceTables
	seed   int64
}

// NewEvaluator creates an evaluator backed by the given reference tables.
func NewEvaluator(tables ReferenceTables) *Evaluator {
	return &Evaluator{tables: tables}
}

// WithSeed returns a copy of the evaluator that rolls deterministically.
func (e *Evaluator) WithSeed(seed int64) *Evaluator {
	return &Evaluator{tables: e.tables, seed: seed}
}

// Evaluate adjudicates one parsed action for the given character. It never
// fails: missing interpretation data falls back through the reference tables
// and finally to a plain strength check at medium difficulty.
func (e *Evaluator) Evaluate(ctx context.Context, parsed model.ParsedAction, sheet character.Sheet, gameCtx model.GameContext) model.CheckResult {
	ability, skill := e.resolveCheck(ctx, parsed)
	dc := e.resolveDC(ctx, parsed, gameCtx)

	proficient := skill != "" && sheet.Proficient(skill)
	roll := dice.RollCheck(dice.CheckRequest{
		AbilityModifier:  sheet.Modifier(ability),
		Proficient:       proficient,
		ProficiencyBonus: sheet.ProficiencyBonus(),
		Seed:             e.seed,
	})

	result := model.CheckResult{
		Intent:           parsed.Intent,
		Ability:          ability,
		Skill:            skill,
		DC:               dc,
		Roll:             roll.Roll,
		Total:            roll.Total,
		AbilityModifier:  roll.AbilityModifier,
		ProficiencyBonus: roll.ProficiencyBonus,
		Outcome:          Classify(roll.Total, dc),
		IsCritical:       roll.IsCritical,
		IsCriticalFail:   roll.IsCriticalFail,
	}

	log.Debug().
		Str("intent", result.Intent).
		Str("ability", string(result.Ability)).
		Str("skill", result.Skill).
		Int("dc", result.DC).
		Int("roll", result.Roll).
		Int("total", result.Total).
		Str("outcome", string(result.Outcome)).
		Msg("rules: check evaluated")
	return result
}

// Classify maps a check total onto an outcome for a fixed DC. Success at
// total >= dc, partial success within 5 below, fail otherwise. Critical
// rolls do not change the classification.
func Classify(total, dc int) model.Outcome {
	switch {
	case total >= dc:
		return model.OutcomeSuccess
	case total+5 >= dc:
		return model.OutcomePartialSuccess
	default:
		return model.OutcomeFail
	}
}

// resolveCheck picks the governing ability and skill. The direct path uses
// the interpreter's ability and skill; otherwise the intent is matched
// against the actions table, then the skills table, then defaults.
func (e *Evaluator) resolveCheck(ctx context.Context, parsed model.ParsedAction) (model.Ability, string) {
	if parsed.Skill != nil && *parsed.Skill != "" {
		return parsed.Ability, srd.NormalizeIndex(*parsed.Skill)
	}

	intent := srd.NormalizeIndex(parsed.Intent)
	if action, ok := e.matchAction(ctx, intent); ok {
		return action.Ability, action.Skill
	}
	if key, skill, ok := matchSkill(e.tables.SkillsTable(ctx), intent); ok {
		return skill.Ability, key
	}

	if parsed.Ability != "" {
		return parsed.Ability, ""
	}
	return model.AbilityStrength, ""
}

func (e *Evaluator) matchAction(ctx context.Context, intent string) (srd.Action, bool) {
	actions := e.tables.ActionsTable(ctx)
	if intent == "" || len(actions) == 0 {
		return srd.Action{}, false
	}
	if action, ok := actions[intent]; ok {
		return action, true
	}
	for key, action := range actions {
		if strings.Contains(intent, key) || strings.Contains(key, intent) {
			return action, true
		}
	}
	return srd.Action{}, false
}

func matchSkill(skills map[string]srd.Skill, intent string) (string, srd.Skill, bool) {
	if intent == "" {
		return "", srd.Skill{}, false
	}
	if skill, ok := skills[intent]; ok {
		return intent, skill, true
	}
	for key, skill := range skills {
		if strings.Contains(intent, key) || strings.Contains(key, intent) {
			return key, skill, true
		}
	}
	return "", srd.Skill{}, false
}

// resolveDC picks the difficulty class: explicit context DC or difficulty
// first, then the matched action's base DC, then the interpreter's estimate,
// then medium.
func (e *Evaluator) resolveDC(ctx context.Context, parsed model.ParsedAction, gameCtx model.GameContext) int {
	if gameCtx.DC != nil {
		return *gameCtx.DC
	}
	if gameCtx.Difficulty != "" {
		if dc, ok := e.tables.DifficultyTable(ctx)[srd.NormalizeIndex(gameCtx.Difficulty)]; ok {
			return dc
		}
	}

	intent := srd.NormalizeIndex(parsed.Intent)
	if parsed.Skill == nil || *parsed.Skill == "" {
		if action, ok := e.matchAction(ctx, intent); ok {
			if dc, ok := e.actionDC(ctx, action, gameCtx); ok {
				return dc
			}
		}
	}

	if parsed.EstimatedDC > 0 {
		return parsed.EstimatedDC
	}
	return e.tables.MediumDC(ctx)
}

// actionDC resolves an action's base DC: a flat value wins; a per-difficulty
// map is keyed by the context difficulty, then by medium, then averaged.
func (e *Evaluator) actionDC(ctx context.Context, action srd.Action, gameCtx model.GameContext) (int, bool) {
	if action.BaseDCFlat != nil {
		return *action.BaseDCFlat, true
	}
	if len(action.BaseDCByLevel) == 0 {
		return 0, false
	}

	if gameCtx.Difficulty != "" {
		if dc, ok := action.BaseDCByLevel[srd.NormalizeIndex(gameCtx.Difficulty)]; ok {
			return dc, true
		}
	}
	if dc, ok := action.BaseDCByLevel[string(model.DifficultyMedium)]; ok {
		return dc, true
	}

	sum := 0
	for _, dc := range action.BaseDCByLevel {
		sum += dc
	}
	return sum / len(action.BaseDCByLevel), true
}
