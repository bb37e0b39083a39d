package core

import (
	"strings"
	"testing"
)

func TestNewScreenIsBlank(t *testing.T) {
	s := NewScreen(6, 3)

	if s.Width() != 6 || s.Height() != 3 {
		t.Fatalf("size = %dx%d, want 6x3", s.Width(), s.Height())
	}
	if got, want := s.String(), "      \n      \n      "; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestScreenSetClipsOutOfBounds(t *testing.T) {
	s := NewScreen(4, 2)

	for _, p := range [][2]int{{-1, 0}, {4, 0}, {0, -1}, {0, 2}} {
		s.Set(p[0], p[1], 'X')
		if got := s.Get(p[0], p[1]); got != ' ' {
			t.Errorf("Get(%d, %d) = %q, want space", p[0], p[1], got)
		}
	}
	if strings.ContainsRune(s.String(), 'X') {
		t.Errorf("out-of-bounds Set leaked into %q", s.String())
	}
}

func TestScreenDrawTextOperators(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"multiplication", "7 × 8", "7 × 8     "},
		{"division", "56 ÷ 7", "56 ÷ 7    "},
		{"clipped", "123 + 4567890", "123 + 4567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScreen(10, 1)
			s.DrawText(0, 0, tt.text)
			if got := s.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScreenDrawTextCenteredCountsRunes(t *testing.T) {
	s := NewScreen(9, 1)
	s.DrawTextCenteredColored(0, "3 × 3", ColorBrightYellow)

	if got, want := s.String(), "  3 × 3  "; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if c := s.GetCell(4, 0); c.Rune != '×' || c.Color != ColorBrightYellow {
		t.Errorf("GetCell(4, 0) = %+v, want yellow ×", c)
	}
}

func TestScreenDrawBoxColored(t *testing.T) {
	s := NewScreen(5, 3)
	s.DrawBoxColored(NewRect(0, 0, 5, 3), ColorBrightCyan)

	want := "┌───┐\n│   │\n└───┘"
	if got := s.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
	if c := s.GetCell(4, 2); c.Color != ColorBrightCyan {
		t.Errorf("corner color = %v, want %v", c.Color, ColorBrightCyan)
	}
	if c := s.GetCell(2, 1); c.Color != ColorDefault {
		t.Errorf("inside color = %v, want default", c.Color)
	}
}

func TestScreenDrawHLine(t *testing.T) {
	s := NewScreen(6, 2)
	s.DrawHLine(1, 1, 10, '─')

	if got, want := s.String(), "      \n ─────"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestScreenClearResetsColor(t *testing.T) {
	s := NewScreen(3, 1)
	s.SetColored(1, 0, '!', ColorRed)
	s.Clear()

	if c := s.GetCell(1, 0); c.Rune != ' ' || c.Color != ColorDefault {
		t.Errorf("GetCell(1, 0) = %+v after Clear, want blank default", c)
	}
}

func TestScreenResize(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want string
	}{
		{"grow keeps content", 5, 3, "ab   \ncd   \n     "},
		{"shrink crops", 1, 1, "a"},
		{"same size", 2, 2, "ab\ncd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScreen(2, 2)
			s.DrawText(0, 0, "ab")
			s.DrawText(0, 1, "cd")

			s.Resize(tt.w, tt.h)
			if s.Width() != tt.w || s.Height() != tt.h {
				t.Fatalf("size = %dx%d, want %dx%d", s.Width(), s.Height(), tt.w, tt.h)
			}
			if got := s.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
