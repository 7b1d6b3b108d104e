// Package resolver orchestrates the action resolution pipeline.
package resolver

import (
	"context"
	"fmt"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/character"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/rs/zerolog/log"
)

// State names a stage of the resolution pipeline.
type State string

// Pipeline states, in order of progression. Impossible and Complete are
// terminal.
const (
	StateIdle       State = "idle"
	StateParsing    State = "parsing"
	StateEvaluating State = "evaluating"
	StateNarrating  State = "narrating"
	StateImpossible State = "impossible"
	StateComplete   State = "complete"
)

// ActionParser interprets free-text actions.
type ActionParser interface {
	Parse(ctx context.Context, actionText string, gameCtx model.GameContext) model.ParsedAction
}

// CheckEvaluator adjudicates parsed actions.
type CheckEvaluator interface {
	Evaluate(ctx context.Context, parsed model.ParsedAction, sheet character.Sheet, gameCtx model.GameContext) model.CheckResult
}

// Narrator describes resolution outcomes.
type Narrator interface {
	Narrate(ctx context.Context, actionText string, parsed model.ParsedAction, check model.CheckResult, sheet character.Sheet, gameCtx model.GameContext) string
}

// Resolver drives one action through parse, evaluation, and narration.
// Each stage absorbs its own failures, so Resolve always terminates with a
// usable narrative; there are no stage retries.
type Resolver struct {
	parser    ActionParser
	evaluator CheckEvaluator
	narrator  Narrator
}

// New creates the full three-stage pipeline.
func New(parser ActionParser, evaluator CheckEvaluator, narrator Narrator) *Resolver {
	return &Resolver{parser: parser, evaluator: evaluator, narrator: narrator}
}

// Resolve runs one player action through the pipeline.
func (r *Resolver) Resolve(ctx context.Context, actionText string, sheet character.Sheet, gameCtx model.GameContext) model.Resolution {
	state := StateParsing
	log.Debug().Str("state", string(state)).Str("action", actionText).Msg("resolver: parsing action")
	parsed := r.parser.Parse(ctx, actionText, gameCtx)

	if !parsed.IsPossible {
		state = StateImpossible
		log.Debug().Str("state", string(state)).Str("reason", parsed.Reason).Msg("resolver: action impossible")
		return model.Resolution{
			Action: parsed,
			Check: model.CheckResult{
				Intent:  parsed.Intent,
				Ability: parsed.Ability,
				Outcome: model.OutcomeImpossible,
			},
			Narrative:         impossibleNarrative(parsed.Reason),
			Success:           false,
			RequiresNewAction: true,
		}
	}

	state = StateEvaluating
	log.Debug().Str("state", string(state)).Str("intent", parsed.Intent).Msg("resolver: evaluating check")
	check := r.evaluator.Evaluate(ctx, parsed, sheet, gameCtx)

	state = StateNarrating
	log.Debug().Str("state", string(state)).Str("outcome", string(check.Outcome)).Msg("resolver: narrating outcome")
	narrative := r.narrator.Narrate(ctx, actionText, parsed, check, sheet, gameCtx)

	state = StateComplete
	log.Debug().Str("state", string(state)).Msg("resolver: resolution complete")
	return model.Resolution{
		Action:    parsed,
		Check:     check,
		Narrative: narrative,
		Success:   check.Outcome.Succeeded(),
	}
}

func impossibleNarrative(reason string) string {
	if reason == "" {
		reason = "The action breaks the rules of the world."
	}
	return fmt.Sprintf("That doesn't work: %s Describe a different action to continue.", reason)
}
