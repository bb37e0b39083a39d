package registry

import (
	"testing"

	"github.com/vovakirdan/math-arcade/internal/core"
)

type stubGame struct{ id string }

func (g stubGame) ID() string { return g.id }
func (g stubGame) Title() string { return "Stub " + g.id }
func (g stubGame) Reset(core.RuntimeConfig) {}
func (g stubGame) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (g stubGame) Render(*core.Screen) {}
func (g stubGame) State() core.GameState { return core.GameState{} }
func (g stubGame) Close() {}

func TestRegisterListCreate(t *testing.T) {
	Register("zz-stub", func() Game { return stubGame{id: "zz-stub"} })
	Register("aa-stub", func() Game { return stubGame{id: "aa-stub"} })

	var order []string
	for _, g := range List() {
		order = append(order, g.ID)
	}
	zi, ai := -1, -1
	for i, id := range order {
		switch id {
		case "zz-stub":
			zi = i
		case "aa-stub":
			ai = i
		}
	}
	if zi < 0 || ai < 0 || zi > ai {
		t.Errorf("List() order = %v, want zz-stub before aa-stub", order)
	}

	g, err := Create("aa-stub")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if g.Title() != "Stub aa-stub" {
		t.Errorf("Title() = %q, want %q", g.Title(), "Stub aa-stub")
	}

	if !Exists("zz-stub") || Exists("missing") {
		t.Error("Exists() mismatch")
	}
	if _, err := Create("missing"); err == nil {
		t.Error("Create(missing) error = nil, want error")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup-stub", func() Game { return stubGame{id: "dup-stub"} })

	defer func() {
		if recover() == nil {
			t.Error("Register() did not panic on duplicate id")
		}
	}()
	Register("dup-stub", func() Game { return stubGame{id: "dup-stub"} })
}
