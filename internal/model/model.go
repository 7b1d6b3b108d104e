// Package model defines the shared data types that flow through the action
// resolution pipeline.
package model

import "time"

// Ability identifies one of the six character ability scores.
type Ability string

// Ability values.
const (
	AbilityStrength     Ability = "strength"
	AbilityDexterity    Ability = "dexterity"
	AbilityConstitution Ability = "constitution"
	AbilityIntelligence Ability = "intelligence"
	AbilityWisdom       Ability = "wisdom"
	AbilityCharisma     Ability = "charisma"
)

// Abilities lists all ability values in canonical order.
func Abilities() []Ability {
	return []Ability{
		AbilityStrength,
		AbilityDexterity,
		AbilityConstitution,
		AbilityIntelligence,
		AbilityWisdom,
		AbilityCharisma,
	}
}

// ParseAbility maps a string onto a known ability. Unknown input reports ok
// as false so the caller can substitute the default.
func ParseAbility(s string) (Ability, bool) {
	for _, a := range Abilities() {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Difficulty names a row of the difficulty class table.
type Difficulty string

// Difficulty values, ordered from easiest to hardest.
const (
	DifficultyVeryEasy         Difficulty = "very_easy"
	DifficultyEasy             Difficulty = "easy"
	DifficultyMedium           Difficulty = "medium"
	DifficultyHard             Difficulty = "hard"
	DifficultyVeryHard         Difficulty = "very_hard"
	DifficultyNearlyImpossible Difficulty = "nearly_impossible"
)

// Difficulties lists difficulty names in ascending rank order.
func Difficulties() []Difficulty {
	return []Difficulty{
		DifficultyVeryEasy,
		DifficultyEasy,
		DifficultyMedium,
		DifficultyHard,
		DifficultyVeryHard,
		DifficultyNearlyImpossible,
	}
}

// Outcome classifies the result of an adjudicated check.
type Outcome string

// Outcome values.
const (
	OutcomeSuccess        Outcome = "success"
	OutcomePartialSuccess Outcome = "partial_success"
	OutcomeFail           Outcome = "fail"
	OutcomeImpossible     Outcome = "impossible"
)

// Succeeded reports whether the outcome counts as a successful resolution.
// A partial success is narratively a success with complication.
func (o Outcome) Succeeded() bool {
	return o == OutcomeSuccess || o == OutcomePartialSuccess
}

// ParsedAction is the structured interpretation of a free-text player action.
// After validation every field is present: absent or unparseable upstream
// data is replaced by typed defaults, never left missing.
type ParsedAction struct {
	IsPossible          bool       `json:"is_possible"`
	Intent              string     `json:"intent"`
	Ability             Ability    `json:"ability"`
	Skill               *string    `json:"skill"`
	EstimatedDC         int        `json:"estimated_dc"`
	EstimatedDifficulty Difficulty `json:"estimated_difficulty"`
	Modifiers           []string   `json:"modifiers"`
	RequiredItems       []string   `json:"required_items"`
	Reason              string     `json:"reason"`
	BaseAction          *string    `json:"base_action"`
}

// CheckResult captures a single adjudicated ability check.
// Invariant: Total = Roll + AbilityModifier + ProficiencyBonus, and Outcome
// is a pure function of Total vs DC.
type CheckResult struct {
	Intent           string  `json:"intent"`
	Ability          Ability `json:"ability"`
	Skill            string  `json:"skill,omitempty"`
	DC               int     `json:"dc"`
	Roll             int     `json:"roll"`
	Total            int     `json:"total"`
	AbilityModifier  int     `json:"ability_modifier"`
	ProficiencyBonus int     `json:"proficiency_bonus"`
	Outcome          Outcome `json:"outcome"`
	IsCritical       bool    `json:"is_critical"`
	IsCriticalFail   bool    `json:"is_critical_fail"`
}

// GameContext carries the situational state a resolution runs in.
type GameContext struct {
	Location    string   `json:"location,omitempty"`
	Environment []string `json:"environment,omitempty"`
	// Difficulty optionally forces a difficulty level by table name.
	Difficulty string `json:"difficulty,omitempty"`
	// DC optionally forces an explicit difficulty class.
	DC *int `json:"dc,omitempty"`
}

// Resolution is the complete result of resolving one player action.
// It is always structurally complete: a resolution never reports a
// pipeline-internal error to the caller.
type Resolution struct {
	Action            ParsedAction `json:"parsed_action"`
	Check             CheckResult  `json:"check_result"`
	Narrative         string       `json:"narrative"`
	Success           bool         `json:"success"`
	RequiresNewAction bool         `json:"requires_new_action,omitempty"`
}

// GameplayEvent is one append-only entry in a session's event log.
type GameplayEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Actor       string    `json:"actor"`
}

// Gameplay event types recorded by a session.
const (
	EventActionResolved   = "action_resolved"
	EventActionImpossible = "action_impossible"
	EventSessionStarted   = "session_started"
)
