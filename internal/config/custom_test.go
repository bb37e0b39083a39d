package config

import (
	"slices"
	"testing"

	"github.com/vovakirdan/math-arcade/internal/errors"
)

func TestParseTables(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{"range", "2-10", []int{2, 3, 4, 5, 6, 7, 8, 9, 10}, false},
		{"list", "1,3,5", []int{1, 3, 5}, false},
		{"list with spaces", " 7 , 2 ,2", []int{2, 7}, false},
		{"mixed", "1-3,9", []int{1, 2, 3, 9}, false},
		{"range clipped", "10-20", []int{10, 11, 12}, false},
		{"out of bounds dropped", "0,5,13", []int{5}, false},
		{"empty", "", nil, true},
		{"nothing in bounds", "13,14", nil, true},
		{"reversed range", "10-2", nil, true},
		{"garbage", "a,b", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTables(tt.input)
			if tt.wantErr {
				if !errors.HasCode(err, errors.CodeInvalidArgument) {
					t.Fatalf("ParseTables(%q) error = %v, want invalid argument", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTables(%q) unexpected error: %v", tt.input, err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseTables(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		check   func() error
		wantErr bool
	}{
		{"default custom multiplication", DefaultCustomConfig().Multiplication.Validate, false},
		{"default custom addition", DefaultCustomConfig().Addition.Validate, false},
		{"default custom subtraction", DefaultCustomConfig().Subtraction.Validate, false},
		{"default custom division", DefaultCustomConfig().Division.Validate, false},
		{"unset multiplier uses default", MultiplicationProfile{Tables: []int{2}}.Validate, false},
		{"empty tables", MultiplicationProfile{Multiplier: Range{1, 10}}.Validate, true},
		{"table out of bounds", MultiplicationProfile{Tables: []int{13}}.Validate, true},
		{"multiplier min equals max", MultiplicationProfile{Tables: []int{2}, Multiplier: Range{3, 3}}.Validate, true},
		{"addition min >= max", AdditionProfile{Range: Range{20, 10}}.Validate, true},
		{"subtraction min == max", SubtractionProfile{Range: Range{5, 5}}.Validate, true},
		{"division zero divisor", DivisionProfile{Dividend: Range{1, 10}, Divisor: Range{0, 5}}.Validate, true},
		{"division no quotient", DivisionProfile{Dividend: Range{1, 5}, Divisor: Range{6, 9}}.Validate, true},
		{"division dividend inverted", DivisionProfile{Dividend: Range{50, 20}, Divisor: Range{2, 5}}.Validate, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCustomAnswerCount(t *testing.T) {
	tests := []struct {
		numAnswers int
		want       int
	}{
		{0, 2},
		{1, 2},
		{2, 2},
		{3, 3},
		{4, 4},
		{9, 4},
	}

	for _, tt := range tests {
		got := CustomConfig{NumAnswers: tt.numAnswers}.AnswerCount()
		if got != tt.want {
			t.Errorf("AnswerCount() with NumAnswers=%d = %d, want %d", tt.numAnswers, got, tt.want)
		}
	}
}
