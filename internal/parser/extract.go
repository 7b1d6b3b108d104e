package parser

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var actionSchema string

// ErrNoStructuredOutput indicates no usable JSON object could be recovered
// from a generation response.
var ErrNoStructuredOutput = errors.New("no structured output in response")

// extractedAction is the decoded interpretation before validation. Models
// sometimes answer estimated_dc with a difficulty name instead of a number;
// DCLevel carries that name so validation can resolve it through the
// difficulty table.
type extractedAction struct {
	Action  model.ParsedAction
	DCLevel string
}

// rawAction mirrors ParsedAction with estimated_dc left loose, since the
// field arrives as either a number or a difficulty-level string.
type rawAction struct {
	IsPossible          bool             `json:"is_possible"`
	Intent              string           `json:"intent"`
	Ability             model.Ability    `json:"ability"`
	Skill               *string          `json:"skill"`
	EstimatedDC         any              `json:"estimated_dc"`
	EstimatedDifficulty model.Difficulty `json:"estimated_difficulty"`
	Modifiers           []string         `json:"modifiers"`
	RequiredItems       []string         `json:"required_items"`
	Reason              string           `json:"reason"`
	BaseAction          *string          `json:"base_action"`
}

func (r rawAction) toExtracted() extractedAction {
	out := extractedAction{
		Action: model.ParsedAction{
			IsPossible:          r.IsPossible,
			Intent:              r.Intent,
			Ability:             r.Ability,
			Skill:               r.Skill,
			EstimatedDifficulty: r.EstimatedDifficulty,
			Modifiers:           r.Modifiers,
			RequiredItems:       r.RequiredItems,
			Reason:              r.Reason,
			BaseAction:          r.BaseAction,
		},
	}
	switch dc := r.EstimatedDC.(type) {
	case float64:
		out.Action.EstimatedDC = int(dc)
	case string:
		out.DCLevel = dc
	}
	return out
}

// extractStructured pulls a ParsedAction out of raw generation text. The
// strict path decodes the first balanced JSON object and validates it
// against the embedded schema; when that fails, a single best-effort
// recovery pass decodes the widest brace-delimited substring without schema
// validation.
func extractStructured(text string) (extractedAction, error) {
	block, ok := firstBalancedObject(text)
	if ok {
		extracted, err := decodeValidated(block)
		if err == nil {
			return extracted, nil
		}
	}

	// Recovery: widest {...} substring, lenient decode.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		var raw rawAction
		if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err == nil {
			return raw.toExtracted(), nil
		}
	}

	return extractedAction{}, ErrNoStructuredOutput
}

func decodeValidated(block string) (extractedAction, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(actionSchema),
		gojsonschema.NewStringLoader(block),
	)
	if err != nil {
		return extractedAction{}, fmt.Errorf("validate structured output: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return extractedAction{}, fmt.Errorf("structured output invalid: %s", strings.Join(details, "; "))
	}

	var raw rawAction
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return extractedAction{}, fmt.Errorf("decode structured output: %w", err)
	}
	return raw.toExtracted(), nil
}

// firstBalancedObject returns the first brace-balanced JSON object in text,
// skipping braces inside string literals.
func firstBalancedObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// extractStringList pulls a JSON string array out of raw generation text.
func extractStringList(text string) ([]string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, ErrNoStructuredOutput
	}
	var items []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("decode category list: %w", err)
	}
	return items, nil
}
