package main

import (
	"testing"

	"github.com/spf13/pflag"

	"github.com/vovakirdan/math-arcade/internal/config"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    config.Range
		wantErr bool
	}{
		{in: "0-20", want: config.Range{Min: 0, Max: 20}},
		{in: " 1 - 10 ", want: config.Range{Min: 1, Max: 10}},
		{in: "5", wantErr: true},
		{in: "a-3", wantErr: true},
		{in: "1-b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRange(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRange(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseRange(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func newCustomFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addCustomFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return fs
}

func TestCustomFromFlags(t *testing.T) {
	c, err := customFromFlags(newCustomFlagSet(t))
	if err != nil || c != nil {
		t.Fatalf("customFromFlags() = %v, %v, want nil without custom flags", c, err)
	}

	c, err = customFromFlags(newCustomFlagSet(t, "--tables", "3,7", "--answers", "9"))
	if err != nil {
		t.Fatalf("customFromFlags() failed: %v", err)
	}
	if got := c.Multiplication.Tables; len(got) != 2 || got[0] != 3 || got[1] != 7 {
		t.Errorf("Tables = %v, want [3 7]", got)
	}
	if got := c.AnswerCount(); got != 4 {
		t.Errorf("AnswerCount() = %d, want 4", got)
	}
	if err := validateCustom("multiplication", c); err != nil {
		t.Errorf("validateCustom() = %v, want nil", err)
	}

	c, err = customFromFlags(newCustomFlagSet(t, "--range", "5-5"))
	if err != nil {
		t.Fatalf("customFromFlags() failed: %v", err)
	}
	if err := validateCustom("addition", c); err == nil {
		t.Error("validateCustom() = nil, want error for empty range")
	}
	if err := validateCustom("division", c); err != nil {
		t.Errorf("validateCustom(division) = %v, want nil", err)
	}

	if _, err := customFromFlags(newCustomFlagSet(t, "--tables", "20-30")); err == nil {
		t.Error("customFromFlags() = nil error, want error for tables outside 1..12")
	}
}
