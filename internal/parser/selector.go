package parser

import (
	"context"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/llm"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/prompts"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/srd"
	"github.com/rs/zerolog/log"
)

// CategorySelector picks which reference categories ground a given action.
type CategorySelector struct {
	generator   llm.Generator
	temperature float64
	maxTokens   int
}

// NewCategorySelector creates a selector over the given generator.
func NewCategorySelector(generator llm.Generator, temperature float64, maxTokens int) *CategorySelector {
	return &CategorySelector{generator: generator, temperature: temperature, maxTokens: maxTokens}
}

// Select asks the model which categories from available are relevant to the
// action. The result is always a non-empty subset of available (or the fixed
// default set when available is empty). Generation failures and names
// outside available fall back to the defaults.
func (s *CategorySelector) Select(ctx context.Context, actionText string, available []string) []string {
	if len(available) == 0 {
		return append([]string(nil), srd.DefaultCategories...)
	}

	raw, err := s.generator.Generate(ctx, llm.Request{
		Prompt:      prompts.CategorySelection(actionText, available),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		log.Warn().Err(err).Msg("parser: category selection failed, using defaults")
		return defaultSelection(available)
	}

	names, err := extractStringList(raw)
	if err != nil {
		log.Warn().Err(err).Msg("parser: category selection unparseable, using defaults")
		return defaultSelection(available)
	}

	allowed := make(map[string]bool, len(available))
	for _, category := range available {
		allowed[category] = true
	}
	selected := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if allowed[name] && !seen[name] {
			selected = append(selected, name)
			seen[name] = true
		}
	}
	if len(selected) == 0 {
		return defaultSelection(available)
	}
	return selected
}

// defaultSelection intersects the fixed default set with available,
// degrading to all of available when none of the defaults exist.
func defaultSelection(available []string) []string {
	allowed := make(map[string]bool, len(available))
	for _, category := range available {
		allowed[category] = true
	}
	selected := make([]string, 0, len(srd.DefaultCategories))
	for _, category := range srd.DefaultCategories {
		if allowed[category] {
			selected = append(selected, category)
		}
	}
	if len(selected) == 0 {
		return append([]string(nil), available...)
	}
	return selected
}
