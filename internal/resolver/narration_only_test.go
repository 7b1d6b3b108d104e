package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/character"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/llm"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/stretchr/testify/assert"
)

type stubGenerator struct {
	output string
	err    error
}

func (g stubGenerator) Generate(context.Context, llm.Request) (string, error) {
	return g.output, g.err
}

func TestNarrationOnly_Resolve(t *testing.T) {
	t.Parallel()

	pipeline := NewNarrationOnly(stubGenerator{output: "You stroll through the market."}, 0.7, 500)
	resolution := pipeline.Resolve(context.Background(), "walk through the market", character.Default(), model.GameContext{})

	assert.True(t, resolution.Success)
	assert.True(t, resolution.Action.IsPossible)
	assert.Equal(t, "You stroll through the market.", resolution.Narrative)
	assert.Zero(t, resolution.Check.Roll)
}

func TestNarrationOnly_FallsBackOnFailure(t *testing.T) {
	t.Parallel()

	pipeline := NewNarrationOnly(stubGenerator{err: errors.New("model down")}, 0.7, 500)
	resolution := pipeline.Resolve(context.Background(), "walk north", character.Default(), model.GameContext{})

	assert.True(t, resolution.Success)
	assert.NotEmpty(t, resolution.Narrative)
}
