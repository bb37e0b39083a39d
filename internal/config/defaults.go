package config

import (
	_ "embed"
)

//go:embed defaults/math.yaml
var defaultMathYAML []byte

// DefaultMultiplier is used when a multiplication profile leaves the multiplier unset.
var DefaultMultiplier = Range{Min: 1, Max: 10}

// DefaultMathConfig returns the level table used when no YAML is available.
func DefaultMathConfig() MathConfig {
	return MathConfig{
		Bands: []LevelBand{
			{Level: 1, MinScore: 0, MaxScore: 4},
			{Level: 2, MinScore: 5, MaxScore: 9},
			{Level: 3, MinScore: 10, MaxScore: 19},
			{Level: 4, MinScore: 20, MaxScore: 34},
			{Level: 5, MinScore: 35, MaxScore: 54},
			{Level: 6, MinScore: 55, MaxScore: 79},
			{Level: 7, MinScore: 80, MaxScore: 109},
			{Level: 8, MinScore: 110, MaxScore: 149},
			{Level: 9, MinScore: 150, MaxScore: 199},
			{Level: 10, MinScore: 200, MaxScore: -1},
		},
		Levels: []LevelProfile{
			level(1, tables(1, 3), Range{1, 5}, Range{0, 10}, Range{1, 15}, Range{1, 3}),
			level(2, tables(1, 5), Range{1, 10}, Range{0, 20}, Range{1, 30}, Range{1, 5}),
			level(3, tables(2, 6), Range{1, 10}, Range{5, 30}, Range{4, 50}, Range{2, 6}),
			level(4, tables(2, 7), Range{1, 10}, Range{10, 50}, Range{4, 70}, Range{2, 7}),
			level(5, tables(3, 8), Range{2, 10}, Range{10, 75}, Range{6, 80}, Range{2, 8}),
			level(6, tables(3, 9), Range{2, 10}, Range{20, 100}, Range{9, 90}, Range{3, 9}),
			level(7, tables(4, 10), Range{2, 10}, Range{25, 150}, Range{12, 100}, Range{3, 10}),
			level(8, tables(5, 11), Range{2, 12}, Range{50, 200}, Range{16, 121}, Range{4, 11}),
			level(9, tables(6, 12), Range{3, 12}, Range{75, 300}, Range{20, 144}, Range{5, 12}),
			level(10, tables(7, 12), Range{5, 12}, Range{100, 500}, Range{36, 144}, Range{6, 12}),
		},
	}
}

// DefaultCustomConfig mirrors the starting values of the custom game form.
func DefaultCustomConfig() CustomConfig {
	return CustomConfig{
		Multiplication: &MultiplicationProfile{Tables: tables(1, 5), Multiplier: Range{1, 10}},
		Addition:       &AdditionProfile{Range: Range{0, 20}},
		Subtraction:    &SubtractionProfile{Range: Range{0, 20}},
		Division:       &DivisionProfile{Dividend: Range{1, 100}, Divisor: Range{1, 10}},
		NumAnswers:     4,
	}
}

func level(n int, mulTables []int, mul, addSub, dividend, divisor Range) LevelProfile {
	return LevelProfile{
		Level:          n,
		Multiplication: MultiplicationProfile{Tables: mulTables, Multiplier: mul},
		Addition:       AdditionProfile{Range: addSub},
		Subtraction:    SubtractionProfile{Range: addSub},
		Division:       DivisionProfile{Dividend: dividend, Divisor: divisor},
	}
}

func tables(from, to int) []int {
	t := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		t = append(t, i)
	}
	return t
}
