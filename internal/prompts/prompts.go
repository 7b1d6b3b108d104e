// Package prompts builds the prompt text sent to the generation backends.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/srd"
)

// CategorySelection asks the model for the reference categories relevant to
// a player action. The answer contract is a bare JSON list of names drawn
// from the available set.
func CategorySelection(actionText string, available []string) string {
	var b strings.Builder
	b.WriteString("You are a D&D 5e rules assistant. A player wants to perform this action:\n\n")
	b.WriteString(fmt.Sprintf("%q\n\n", actionText))
	b.WriteString("Which of these SRD reference categories are needed to adjudicate it?\n")
	for _, category := range available {
		b.WriteString("- ")
		b.WriteString(category)
		b.WriteString("\n")
	}
	b.WriteString("\nAnswer with a JSON array of category names only, for example [\"skills\", \"rule-sections\"].\n")
	b.WriteString("Do not invent categories. Do not add any other text.\n")
	return b.String()
}

// ActionInterpretation builds the grounding prompt for the structured parse
// of a player action. The fetched reference tables are embedded so the model
// answers from rules data instead of memory.
func ActionInterpretation(actionText string, gameCtx model.GameContext, data srd.ReferenceDataSet) string {
	var b strings.Builder
	b.WriteString("You are a D&D 5e Dungeon Master adjudicating a player action.\n\n")
	b.WriteString("Player action:\n")
	b.WriteString(fmt.Sprintf("%q\n\n", actionText))
	writeGameContext(&b, gameCtx)
	writeReferenceData(&b, data)

	b.WriteString("Interpret the action and answer with a single JSON object:\n")
	b.WriteString(`{
  "is_possible": bool,
  "intent": "short verb phrase for what the player attempts",
  "ability": "strength|dexterity|constitution|intelligence|wisdom|charisma",
  "skill": "skill name or null",
  "estimated_dc": 5-30,
  "estimated_difficulty": "very_easy|easy|medium|hard|very_hard|nearly_impossible",
  "modifiers": ["situational modifiers"],
  "required_items": ["items the action needs"],
  "reason": "why the action is impossible, empty when possible",
  "base_action": "matching reference action name or null"
}`)
	b.WriteString("\n\nGround your answer in the reference data above. Output the JSON object only.\n")
	return b.String()
}

// Narration builds the prompt that turns an adjudicated check into a scene
// description.
func Narration(actionText string, parsed model.ParsedAction, check model.CheckResult, actor string, gameCtx model.GameContext) string {
	var b strings.Builder
	b.WriteString("You are a D&D Dungeon Master narrating the outcome of a player action.\n\n")
	b.WriteString(fmt.Sprintf("Actor: %s\n", actor))
	b.WriteString(fmt.Sprintf("Action: %q\n", actionText))
	b.WriteString(fmt.Sprintf("Intent: %s\n", parsed.Intent))
	writeGameContext(&b, gameCtx)

	b.WriteString("\nCheck result:\n")
	b.WriteString(fmt.Sprintf("- Ability: %s\n", check.Ability))
	if check.Skill != "" {
		b.WriteString(fmt.Sprintf("- Skill: %s\n", check.Skill))
	}
	b.WriteString(fmt.Sprintf("- DC: %d\n", check.DC))
	b.WriteString(fmt.Sprintf("- Roll: %d (total %d)\n", check.Roll, check.Total))
	b.WriteString(fmt.Sprintf("- Outcome: %s\n", check.Outcome))
	if check.IsCritical {
		b.WriteString("- Natural 20: make it spectacular.\n")
	}
	if check.IsCriticalFail {
		b.WriteString("- Natural 1: make the failure memorable, not lethal.\n")
	}

	b.WriteString("\nNarrate the outcome in 2-4 sentences, second person, present tense.\n")
	b.WriteString("Stay consistent with the outcome: a fail must fail, a partial success succeeds at a cost.\n")
	b.WriteString("Do not mention dice, numbers, or game mechanics.\n")
	return b.String()
}

func writeGameContext(b *strings.Builder, gameCtx model.GameContext) {
	if gameCtx.Location != "" {
		b.WriteString(fmt.Sprintf("Location: %s\n", gameCtx.Location))
	}
	if len(gameCtx.Environment) > 0 {
		b.WriteString(fmt.Sprintf("Environment: %s\n", strings.Join(gameCtx.Environment, ", ")))
	}
}

func writeReferenceData(b *strings.Builder, data srd.ReferenceDataSet) {
	if len(data) == 0 {
		return
	}
	b.WriteString("Reference data:\n")
	for category, records := range data {
		if len(records) == 0 {
			continue
		}
		encoded, err := json.Marshal(records)
		if err != nil {
			continue
		}
		b.WriteString(fmt.Sprintf("## %s\n%s\n", category, encoded))
	}
	b.WriteString("\n")
}
