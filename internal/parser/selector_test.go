package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/llm"
	"github.com/stretchr/testify/assert"
)

type stubGenerator struct {
	output string
	err    error
}

func (g stubGenerator) Generate(context.Context, llm.Request) (string, error) {
	return g.output, g.err
}

var allCategories = []string{"skills", "ability-scores", "rule-sections", "equipment", "spells"}

func TestSelect_SubsetOfAvailable(t *testing.T) {
	t.Parallel()

	selector := NewCategorySelector(stubGenerator{output: `["skills", "spells", "made-up-category"]`}, 0, 100)
	selected := selector.Select(context.Background(), "cast a spell", allCategories)

	assert.Equal(t, []string{"skills", "spells"}, selected)
}

func TestSelect_GenerationFailureUsesDefaults(t *testing.T) {
	t.Parallel()

	selector := NewCategorySelector(stubGenerator{err: errors.New("model unavailable")}, 0, 100)
	selected := selector.Select(context.Background(), "climb the wall", allCategories)

	assert.Equal(t, []string{"skills", "ability-scores", "rule-sections"}, selected)
}

func TestSelect_MalformedOutputUsesDefaults(t *testing.T) {
	t.Parallel()

	selector := NewCategorySelector(stubGenerator{output: "I think skills would be best."}, 0, 100)
	selected := selector.Select(context.Background(), "climb the wall", allCategories)

	assert.Equal(t, []string{"skills", "ability-scores", "rule-sections"}, selected)
}

func TestSelect_AllNamesUnknownUsesDefaults(t *testing.T) {
	t.Parallel()

	selector := NewCategorySelector(stubGenerator{output: `["monsters", "traps"]`}, 0, 100)
	selected := selector.Select(context.Background(), "fight", allCategories)

	assert.Equal(t, []string{"skills", "ability-scores", "rule-sections"}, selected)
}

func TestSelect_DefaultsIntersectAvailable(t *testing.T) {
	t.Parallel()

	selector := NewCategorySelector(stubGenerator{err: errors.New("down")}, 0, 100)
	selected := selector.Select(context.Background(), "anything", []string{"skills", "equipment"})

	assert.Equal(t, []string{"skills"}, selected)
}

func TestSelect_EmptyAvailable(t *testing.T) {
	t.Parallel()

	selector := NewCategorySelector(stubGenerator{output: `["skills"]`}, 0, 100)
	selected := selector.Select(context.Background(), "anything", nil)

	assert.Equal(t, []string{"skills", "ability-scores", "rule-sections"}, selected)
}

func TestSelect_Deduplicates(t *testing.T) {
	t.Parallel()

	selector := NewCategorySelector(stubGenerator{output: `["skills", "skills", "spells"]`}, 0, 100)
	selected := selector.Select(context.Background(), "sneak attack", allCategories)

	assert.Equal(t, []string{"skills", "spells"}, selected)
}
