package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/math-arcade/internal/core"
)

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(12, 2)
	s.DrawText(0, 0, "7 × 8")
	s.DrawTextColored(0, 1, "[1] 56", core.ColorBrightGreen)

	out := RenderScreen(s)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("RenderScreen() rows = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "7 × 8") {
		t.Errorf("row 0 = %q, want plain prefix", lines[0])
	}
	if !strings.Contains(lines[1], "[1] 56") {
		t.Errorf("row 1 = %q, want answer text", lines[1])
	}
}
