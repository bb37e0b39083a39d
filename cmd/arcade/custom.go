package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vovakirdan/math-arcade/internal/config"
	"github.com/vovakirdan/math-arcade/internal/mathgame"
)

// Custom difficulty flags, shared by play and menu.
var (
	flagTables     string
	flagMultiplier string
	flagRange      string
	flagDividend   string
	flagDivisor    string
	flagAnswers    int
)

var customFlagNames = []string{"tables", "multiplier", "range", "dividend", "divisor", "answers"}

func addCustomFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagTables, "tables", "1-5", `Multiplication tables, "2-10" or "1,3,5"`)
	fs.StringVar(&flagMultiplier, "multiplier", "1-10", "Multiplier range")
	fs.StringVar(&flagRange, "range", "0-20", "Operand range for addition and subtraction")
	fs.StringVar(&flagDividend, "dividend", "1-100", "Dividend range")
	fs.StringVar(&flagDivisor, "divisor", "1-10", "Divisor range")
	fs.IntVar(&flagAnswers, "answers", 4, "Answer choices, 2 to 4")
}

// customFromFlags returns nil unless a custom difficulty flag was set.
func customFromFlags(fs *pflag.FlagSet) (*config.CustomConfig, error) {
	changed := false
	for _, name := range customFlagNames {
		changed = changed || fs.Changed(name)
	}
	if !changed {
		return nil, nil
	}

	c := config.DefaultCustomConfig()
	c.NumAnswers = flagAnswers

	tables, err := config.ParseTables(flagTables)
	if err != nil {
		return nil, err
	}
	multiplier, err := parseRange(flagMultiplier)
	if err != nil {
		return nil, fmt.Errorf("--multiplier: %w", err)
	}
	c.Multiplication = &config.MultiplicationProfile{Tables: tables, Multiplier: multiplier}

	addSub, err := parseRange(flagRange)
	if err != nil {
		return nil, fmt.Errorf("--range: %w", err)
	}
	c.Addition = &config.AdditionProfile{Range: addSub}
	c.Subtraction = &config.SubtractionProfile{Range: addSub}

	dividend, err := parseRange(flagDividend)
	if err != nil {
		return nil, fmt.Errorf("--dividend: %w", err)
	}
	divisor, err := parseRange(flagDivisor)
	if err != nil {
		return nil, fmt.Errorf("--divisor: %w", err)
	}
	c.Division = &config.DivisionProfile{Dividend: dividend, Divisor: divisor}

	return &c, nil
}

// validateCustom checks the profile gameID would play with c.
func validateCustom(gameID string, c *config.CustomConfig) error {
	if c == nil {
		return nil
	}
	op, err := mathgame.ParseGameType(gameID)
	if err != nil {
		return err
	}
	_, err = mathgame.CustomProfile(op, *c)
	return err
}

// parseRange parses "min-max". Negative bounds are not accepted.
func parseRange(s string) (config.Range, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return config.Range{}, fmt.Errorf("range %q: want min-max", s)
	}

	lo, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return config.Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return config.Range{}, fmt.Errorf("range %q: %w", s, err)
	}

	return config.Range{Min: lo, Max: hi}, nil
}
