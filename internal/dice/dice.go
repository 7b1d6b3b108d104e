// Package dice implements the dice rolls behind ability checks.
package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidExpression indicates a roll expression could not be parsed.
var ErrInvalidExpression = errors.New("invalid roll expression")

// CheckRequest describes a single d20 ability check roll.
//
// CheckRequest is deterministic with respect to Seed: the same Seed always
// produces the same die face. A zero Seed draws a fresh random seed, for
// live play.
type CheckRequest struct {
	AbilityModifier  int
	Proficient       bool
	ProficiencyBonus int
	Seed             int64
}

// CheckRoll captures the result of an ability check roll.
type CheckRoll struct {
	Roll             int
	Total            int
	AbilityModifier  int
	ProficiencyBonus int
	IsCritical       bool
	IsCriticalFail   bool
}

// RollCheck rolls 1d20 and applies the ability modifier, plus the
// proficiency bonus when the character is proficient. The critical flags
// report natural 20 and natural 1 faces; they do not change the total.
func RollCheck(req CheckRequest) CheckRoll {
	roll := rollDie(newRNG(req.Seed), 20)

	bonus := 0
	if req.Proficient {
		bonus = req.ProficiencyBonus
	}

	return CheckRoll{
		Roll:             roll,
		Total:            roll + req.AbilityModifier + bonus,
		AbilityModifier:  req.AbilityModifier,
		ProficiencyBonus: bonus,
		IsCritical:       roll == 20,
		IsCriticalFail:   roll == 1,
	}
}

// RollResult captures an expression roll such as "2d6+3".
type RollResult struct {
	Total    int
	Rolls    []int
	Modifier int
}

var expressionPattern = regexp.MustCompile(`^(\d+)d(\d+)([+-]\d+)?$`)

// Roll rolls a dice expression of the form NdS with an optional +M/-M
// modifier. Deterministic with respect to seed; zero seed rolls randomly.
func Roll(expression string, seed int64) (RollResult, error) {
	match := expressionPattern.FindStringSubmatch(strings.ReplaceAll(strings.ToLower(expression), " ", ""))
	if match == nil {
		return RollResult{}, fmt.Errorf("%w: %q", ErrInvalidExpression, expression)
	}

	count, _ := strconv.Atoi(match[1])
	sides, _ := strconv.Atoi(match[2])
	modifier := 0
	if match[3] != "" {
		modifier, _ = strconv.Atoi(match[3])
	}
	if count <= 0 || sides <= 0 {
		return RollResult{}, fmt.Errorf("%w: %q", ErrInvalidExpression, expression)
	}

	rng := newRNG(seed)
	rolls := make([]int, count)
	total := modifier
	for i := range rolls {
		rolls[i] = rollDie(rng, sides)
		total += rolls[i]
	}

	return RollResult{Total: total, Rolls: rolls, Modifier: modifier}, nil
}

func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = rand.Int63()
	}
	return rand.New(rand.NewSource(seed))
}

// rollDie rolls a die with the provided number of sides.
func rollDie(rng *rand.Rand, sides int) int {
	return rng.Intn(sides) + 1
}
