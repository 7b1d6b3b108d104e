// Package character provides read-only character sheets. The pipeline
// consults a sheet for modifiers and proficiencies but never mutates it.
package character

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"gopkg.in/yaml.v3"
)

// Sheet is a character sheet. Zero-valued ability scores are treated as the
// baseline score of 10.
type Sheet struct {
	Name      string                `yaml:"name"`
	Level     int                   `yaml:"level"`
	Class     string                `yaml:"class"`
	Abilities map[model.Ability]int `yaml:"abilities"`
	// Skills lists proficient skills in canonical key form.
	Skills    []string `yaml:"skills"`
	Equipment []string `yaml:"equipment"`
}

// Default returns a baseline level-1 sheet used when no character is loaded.
func Default() Sheet {
	return Sheet{
		Name:  "Adventurer",
		Level: 1,
		Abilities: map[model.Ability]int{
			model.AbilityStrength:     10,
			model.AbilityDexterity:    10,
			model.AbilityConstitution: 10,
			model.AbilityIntelligence: 10,
			model.AbilityWisdom:       10,
			model.AbilityCharisma:     10,
		},
	}
}

// Score returns the raw ability score, defaulting to 10 when unset.
func (s Sheet) Score(ability model.Ability) int {
	if score, ok := s.Abilities[ability]; ok {
		return score
	}
	return 10
}

// Modifier returns the ability modifier: (score - 10) / 2, floored.
func (s Sheet) Modifier(ability model.Ability) int {
	score := s.Score(ability)
	// Integer division truncates toward zero; floor negative halves.
	diff := score - 10
	if diff < 0 {
		return -((-diff + 1) / 2)
	}
	return diff / 2
}

// ProficiencyBonus returns the level-derived bonus: 2 + (level-1)/4.
func (s Sheet) ProficiencyBonus() int {
	level := s.Level
	if level < 1 {
		level = 1
	}
	return 2 + (level-1)/4
}

// Proficient reports whether the sheet is proficient in the named skill.
// The skill is compared in canonical key form.
func (s Sheet) Proficient(skill string) bool {
	key := normalizeSkill(skill)
	if key == "" {
		return false
	}
	for _, have := range s.Skills {
		if normalizeSkill(have) == key {
			return true
		}
	}
	return false
}

func normalizeSkill(skill string) string {
	return strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(strings.ToLower(skill)), " ", "_"), "-", "_")
}

// Load reads a YAML sheet file.
func Load(path string) (Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("read character sheet: %w", err)
	}
	sheet := Default()
	if err := yaml.Unmarshal(data, &sheet); err != nil {
		return Sheet{}, fmt.Errorf("decode character sheet %s: %w", path, err)
	}
	if sheet.Level < 1 {
		sheet.Level = 1
	}
	return sheet, nil
}

// LoadByName reads "<dir>/<name>.yaml", falling back to the default sheet
// when the file does not exist.
func LoadByName(dir, name string) (Sheet, error) {
	if strings.TrimSpace(name) == "" {
		return Default(), nil
	}
	path := filepath.Join(dir, name+".yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
