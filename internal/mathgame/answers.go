package mathgame

import (
	"math/rand"
	"slices"

	"github.com/vovakirdan/math-arcade/internal/errors"
)

// Answer set bounds.
const (
	MinAnswers = 2
	MaxAnswers = 4
)

// Repair tiers for wrong answers.
const (
	randomAttempts = 10
	largeOffset    = 10
)

var fallbackOffsets = []int{1, -1, 2, -2, 3, -3, 4, -4, 5, -5}

// AnswerChoice is one selectable answer.
type AnswerChoice struct {
	Value   int  `json:"value"`
	Correct bool `json:"isCorrect"`
}

// BuildAnswers returns count shuffled choices for p (count is clamped to
// [MinAnswers, MaxAnswers]). Exactly one choice is correct and all values
// are distinct. Wrong values are negative only when the result is.
func BuildAnswers(rng *rand.Rand, p Problem, count int) ([]AnswerChoice, error) {
	count = min(max(count, MinAnswers), MaxAnswers)

	values := make([]int, 1, count)
	values[0] = p.Result

	accept := func(v int) bool {
		if v < 0 && p.Result >= 0 {
			return false
		}
		return !slices.Contains(values, v)
	}

	for len(values) < count {
		v, ok := wrongAnswer(rng, p, accept)
		if !ok {
			return nil, errors.AnswerGenerationExhausted(p.Result)
		}
		values = append(values, v)
	}

	choices := make([]AnswerChoice, len(values))
	for i, v := range values {
		choices[i] = AnswerChoice{Value: v, Correct: i == 0}
	}
	rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	return choices, nil
}

// wrongAnswer tries random near-misses, then the fixed fallback offsets, then
// multiples of a large offset with a random sign.
func wrongAnswer(rng *rand.Rand, p Problem, accept func(int) bool) (int, bool) {
	for range randomAttempts {
		if v := nearMiss(rng, p); accept(v) {
			return v, true
		}
	}

	for _, off := range fallbackOffsets {
		if v := p.Result + off; accept(v) {
			return v, true
		}
	}

	for k := 1; k <= MaxAnswers; k++ {
		off := largeOffset * k * sign(rng)
		if v := p.Result + off; accept(v) {
			return v, true
		}
		if v := p.Result - off; accept(v) {
			return v, true
		}
	}

	return 0, false
}

// nearMiss produces a plausible wrong value for the operator.
func nearMiss(rng *rand.Rand, p Problem) int {
	switch p.Operator {
	case OpMul:
		// Off-by-one on a factor is the classic times-table slip.
		switch rng.Intn(3) {
		case 0:
			return (p.OperandA + sign(rng)) * p.OperandB
		case 1:
			return p.OperandA * (p.OperandB + sign(rng))
		default:
			return p.Result + offset(rng, 3)
		}
	case OpDiv:
		return p.Result + offset(rng, 3)
	default:
		return p.Result + offset(rng, 5)
	}
}

// offset returns a non-zero value in [-n, n].
func offset(rng *rand.Rand, n int) int {
	return (1 + rng.Intn(n)) * sign(rng)
}

func sign(rng *rand.Rand) int {
	if rng.Intn(2) == 0 {
		return -1
	}
	return 1
}
