package config

import (
	"slices"
	"strconv"
	"strings"

	"github.com/vovakirdan/math-arcade/internal/errors"
)

// Limits for user-supplied multiplication tables.
const (
	MinTable = 1
	MaxTable = 12
)

// CustomConfig is a user-supplied difficulty. Only the profile matching the
// chosen game is used.
type CustomConfig struct {
	Multiplication *MultiplicationProfile `json:"multiplication,omitempty" yaml:"multiplication,omitempty"`
	Addition       *AdditionProfile       `json:"addition,omitempty" yaml:"addition,omitempty"`
	Subtraction    *SubtractionProfile    `json:"subtraction,omitempty" yaml:"subtraction,omitempty"`
	Division       *DivisionProfile       `json:"division,omitempty" yaml:"division,omitempty"`
	NumAnswers     int                    `json:"numAnswers,omitempty" yaml:"num_answers,omitempty"`
}

// AnswerCount returns NumAnswers clamped to [2, 4].
func (c CustomConfig) AnswerCount() int {
	return min(max(c.NumAnswers, 2), 4)
}

// ParseTables parses "2-10" or "1,3,5" (ranges and lists may be mixed).
// Values outside 1..12 are dropped; the result is sorted and deduplicated.
func ParseTables(input string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if from, to, ok := strings.Cut(part, "-"); ok {
			start, err1 := strconv.Atoi(strings.TrimSpace(from))
			end, err2 := strconv.Atoi(strings.TrimSpace(to))
			if err1 != nil || err2 != nil || start > end {
				return nil, errors.InvalidDifficulty("bad table range %q", part)
			}
			for v := max(start, MinTable); v <= min(end, MaxTable); v++ {
				out = append(out, v)
			}
			continue
		}

		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.InvalidDifficulty("bad table %q", part)
		}
		if v >= MinTable && v <= MaxTable {
			out = append(out, v)
		}
	}

	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil, errors.InvalidDifficulty("no multiplication tables in %d..%d", MinTable, MaxTable)
	}
	return out, nil
}

func validateRange(name string, r Range) error {
	if r.Min >= r.Max {
		return errors.InvalidDifficulty("%s min %d must be less than max %d", name, r.Min, r.Max)
	}
	return nil
}

// MultiplierOrDefault returns the multiplier range, defaulting to 1..10 when unset.
func (p MultiplicationProfile) MultiplierOrDefault() Range {
	if p.Multiplier.IsZero() {
		return DefaultMultiplier
	}
	return p.Multiplier
}

func (p MultiplicationProfile) Validate() error {
	if len(p.Tables) == 0 {
		return errors.InvalidDifficulty("empty multiplication table set")
	}
	for _, t := range p.Tables {
		if t < MinTable || t > MaxTable {
			return errors.InvalidDifficulty("table %d outside %d..%d", t, MinTable, MaxTable)
		}
	}
	return validateRange("multiplier", p.MultiplierOrDefault())
}

func (p AdditionProfile) Validate() error {
	return validateRange("addition", p.Range)
}

func (p SubtractionProfile) Validate() error {
	return validateRange("subtraction", p.Range)
}

// Validate also rejects divisors below 1 and ranges where every divisor
// exceeds the largest dividend, since no non-zero quotient would exist.
func (p DivisionProfile) Validate() error {
	if err := validateRange("dividend", p.Dividend); err != nil {
		return err
	}
	if err := validateRange("divisor", p.Divisor); err != nil {
		return err
	}
	if p.Divisor.Min < 1 {
		return errors.InvalidDifficulty("divisor min %d must be at least 1", p.Divisor.Min)
	}
	if p.Dividend.Max < p.Divisor.Min {
		return errors.InvalidDifficulty("dividend max %d is below every divisor", p.Dividend.Max)
	}
	return nil
}
