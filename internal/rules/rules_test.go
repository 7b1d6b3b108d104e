package rules

import (
	"context"
	"testing"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/character"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/srd"
	"github.com/stretchr/testify/assert"
)

type stubTables struct {
	skills  map[string]srd.Skill
	actions map[string]srd.Action
	table   map[string]int
}

func (s stubTables) SkillsTable(context.Context) map[string]srd.Skill { return s.skills }
func (s stubTables) ActionsTable(context.Context) map[string]srd.Action {
	return s.actions
}
func (s stubTables) DifficultyTable(context.Context) map[string]int { return s.table }
func (s stubTables) MediumDC(context.Context) int                   { return 15 }

func defaultTables() stubTables {
	return stubTables{
		skills: map[string]srd.Skill{
			"stealth":    {Name: "Stealth", Ability: model.AbilityDexterity},
			"athletics":  {Name: "Athletics", Ability: model.AbilityStrength},
			"perception": {Name: "Perception", Ability: model.AbilityWisdom},
		},
		actions: map[string]srd.Action{},
		table: map[string]int{
			"very_easy":         5,
			"easy":              10,
			"medium":            15,
			"hard":              20,
			"very_hard":         25,
			"nearly_impossible": 30,
		},
	}
}

// Outcome classification against DC 15 with a +2 modifier, no proficiency:
// total 16 succeeds, total 7 fails, total 11 lands within five of the DC.
func TestClassify_Scenario(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.OutcomeSuccess, Classify(14+2, 15))
	assert.Equal(t, model.OutcomeFail, Classify(5+2, 15))
	assert.Equal(t, model.OutcomePartialSuccess, Classify(9+2, 15))
}

func TestClassify_MonotonicInTotal(t *testing.T) {
	t.Parallel()

	const dc = 15
	rank := func(o model.Outcome) int {
		switch o {
		case model.OutcomeFail:
			return 0
		case model.OutcomePartialSuccess:
			return 1
		default:
			return 2
		}
	}
	prev := Classify(-5, dc)
	for total := -4; total <= 40; total++ {
		cur := Classify(total, dc)
		if rank(cur) < rank(prev) {
			t.Fatalf("outcome regressed at total %d: %s after %s", total, cur, prev)
		}
		prev = cur
	}
}

func TestClassify_Boundaries(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.OutcomeSuccess, Classify(15, 15))
	assert.Equal(t, model.OutcomePartialSuccess, Classify(14, 15))
	assert.Equal(t, model.OutcomePartialSuccess, Classify(10, 15))
	assert.Equal(t, model.OutcomeFail, Classify(9, 15))
}

func TestEvaluate_DirectPath(t *testing.T) {
	t.Parallel()

	skill := "stealth"
	parsed := model.ParsedAction{
		IsPossible:  true,
		Intent:      "sneak past the guard",
		Ability:     model.AbilityDexterity,
		Skill:       &skill,
		EstimatedDC: 15,
	}
	sheet := character.Default()
	sheet.Abilities[model.AbilityDexterity] = 14
	sheet.Skills = []string{"stealth"}

	result := NewEvaluator(defaultTables()).WithSeed(42).Evaluate(context.Background(), parsed, sheet, model.GameContext{})

	assert.Equal(t, model.AbilityDexterity, result.Ability)
	assert.Equal(t, "stealth", result.Skill)
	assert.Equal(t, 15, result.DC)
	assert.Equal(t, 2, result.AbilityModifier)
	assert.Equal(t, 2, result.ProficiencyBonus)
	assert.GreaterOrEqual(t, result.Roll, 1)
	assert.LessOrEqual(t, result.Roll, 20)
	assert.Equal(t, result.Roll+result.AbilityModifier+result.ProficiencyBonus, result.Total)
	assert.Equal(t, Classify(result.Total, result.DC), result.Outcome)
	assert.Equal(t, result.Roll == 20, result.IsCritical)
	assert.Equal(t, result.Roll == 1, result.IsCriticalFail)
}

func TestEvaluate_Deterministic(t *testing.T) {
	t.Parallel()

	parsed := model.ParsedAction{IsPossible: true, Intent: "climb", Ability: model.AbilityStrength, EstimatedDC: 12}
	evaluator := NewEvaluator(defaultTables()).WithSeed(7)

	first := evaluator.Evaluate(context.Background(), parsed, character.Default(), model.GameContext{})
	second := evaluator.Evaluate(context.Background(), parsed, character.Default(), model.GameContext{})
	assert.Equal(t, first, second)
}

func TestEvaluate_IntentFallbackToSkill(t *testing.T) {
	t.Parallel()

	parsed := model.ParsedAction{IsPossible: true, Intent: "stealth approach", EstimatedDC: 10}
	result := NewEvaluator(defaultTables()).WithSeed(3).Evaluate(context.Background(), parsed, character.Default(), model.GameContext{})

	assert.Equal(t, model.AbilityDexterity, result.Ability)
	assert.Equal(t, "stealth", result.Skill)
}

func TestEvaluate_IntentFallbackToActions(t *testing.T) {
	t.Parallel()

	dc := 12
	tables := defaultTables()
	tables.actions = map[string]srd.Action{
		"grapple": {Name: "Grapple", Ability: model.AbilityStrength, Skill: "athletics", BaseDCFlat: &dc},
	}

	parsed := model.ParsedAction{IsPossible: true, Intent: "grapple"}
	result := NewEvaluator(tables).WithSeed(3).Evaluate(context.Background(), parsed, character.Default(), model.GameContext{})

	assert.Equal(t, model.AbilityStrength, result.Ability)
	assert.Equal(t, "athletics", result.Skill)
	assert.Equal(t, 12, result.DC)
}

func TestEvaluate_NoMatchDefaultsToStrength(t *testing.T) {
	t.Parallel()

	tables := defaultTables()
	tables.skills = map[string]srd.Skill{}

	parsed := model.ParsedAction{IsPossible: true, Intent: "vault the counter"}
	result := NewEvaluator(tables).WithSeed(5).Evaluate(context.Background(), parsed, character.Default(), model.GameContext{})

	assert.Equal(t, model.AbilityStrength, result.Ability)
	assert.Empty(t, result.Skill)
	assert.Equal(t, 15, result.DC)
}

func TestResolveDC_ContextWins(t *testing.T) {
	t.Parallel()

	forced := 22
	parsed := model.ParsedAction{IsPossible: true, Intent: "climb", EstimatedDC: 10}

	byDC := NewEvaluator(defaultTables()).WithSeed(1).Evaluate(context.Background(), parsed, character.Default(), model.GameContext{DC: &forced})
	assert.Equal(t, 22, byDC.DC)

	byName := NewEvaluator(defaultTables()).WithSeed(1).Evaluate(context.Background(), parsed, character.Default(), model.GameContext{Difficulty: "hard"})
	assert.Equal(t, 20, byName.DC)
}

func TestActionDC_PerDifficultyMap(t *testing.T) {
	t.Parallel()

	tables := defaultTables()
	tables.actions = map[string]srd.Action{
		"pick_lock": {
			Name:          "Pick Lock",
			Ability:       model.AbilityDexterity,
			BaseDCByLevel: map[string]int{"easy": 10, "medium": 14, "hard": 18},
		},
	}
	evaluator := NewEvaluator(tables).WithSeed(1)
	parsed := model.ParsedAction{IsPossible: true, Intent: "pick_lock"}

	// Context difficulty keys into the action map before the global table.
	result := evaluator.Evaluate(context.Background(), parsed, character.Default(), model.GameContext{Difficulty: "unheard_of"})
	assert.Equal(t, 14, result.DC)

	result = evaluator.Evaluate(context.Background(), parsed, character.Default(), model.GameContext{})
	assert.Equal(t, 14, result.DC)
}

func TestActionDC_MapAverage(t *testing.T) {
	t.Parallel()

	tables := defaultTables()
	tables.actions = map[string]srd.Action{
		"force_door": {
			Name:          "Force Door",
			Ability:       model.AbilityStrength,
			BaseDCByLevel: map[string]int{"easy": 10, "hard": 20},
		},
	}
	parsed := model.ParsedAction{IsPossible: true, Intent: "force_door"}
	result := NewEvaluator(tables).WithSeed(1).Evaluate(context.Background(), parsed, character.Default(), model.GameContext{})
	assert.Equal(t, 15, result.DC)
}
