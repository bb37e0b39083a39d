package mathgame

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/vovakirdan/math-arcade/internal/config"
	"github.com/vovakirdan/math-arcade/internal/core"
	"github.com/vovakirdan/math-arcade/internal/registry"
)

// Package-level settings shared by every registered math game.
var (
	settingsMu   sync.RWMutex
	configPath   string
	customConfig *config.CustomConfig
)

// SetConfigPath sets the level table file. Empty uses the default search path.
func SetConfigPath(path string) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	configPath = path
}

// SetCustomConfig pins new games to a custom difficulty. nil restores level progression.
func SetCustomConfig(c *config.CustomConfig) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	customConfig = c
}

// Difficulty builds the difficulty manager for new games from the current settings.
func Difficulty() (*config.DifficultyManager, error) {
	settingsMu.RLock()
	path, custom := configPath, customConfig
	settingsMu.RUnlock()

	cfg, err := config.LoadMath(path)
	if err != nil {
		return nil, err
	}
	if custom != nil {
		return config.NewCustomDifficultyManager(cfg, *custom), nil
	}
	return config.NewDifficultyManager(cfg), nil
}

func init() {
	for _, op := range Operators {
		registry.Register(op.GameType(), func() registry.Game {
			return New(op)
		})
	}
}

// Game adapts a Session to the fixed-tick registry.Game loop. Frames drive a
// ManualClock, so session timers advance only as fast as the platform steps.
type Game struct {
	op       Operator
	session  *Session
	clock    *ManualClock
	frame    time.Duration
	pending  time.Duration // frame time not yet spent on a session tick
	selected int
	result   *Result
	err      error

	screenW int
	screenH int
}

// New creates a game for op. The session starts on Reset.
func New(op Operator) *Game {
	return &Game{op: op}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return g.op.GameType()
}

// Title returns the display name.
func (g *Game) Title() string {
	return g.op.Title()
}

// Operator returns the practiced operator.
func (g *Game) Operator() Operator {
	return g.op
}

// Reset starts a fresh session.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	if g.session != nil {
		g.session.Close()
	}

	cfg = cfg.WithDefaults()

	g.frame = cfg.FrameInterval()
	g.pending = 0
	g.selected = 0
	g.result = nil
	g.err = nil
	g.session = nil
	g.clock = NewManualClock()
	g.screenW, g.screenH = cfg.ScreenW, cfg.ScreenH

	difficulty, err := Difficulty()
	if err != nil {
		g.err = err
		return
	}

	g.session, g.err = NewSession(Options{
		Operator:   g.op,
		Difficulty: difficulty,
		Rand:       rand.New(rand.NewSource(cfg.Seed)),
		Scheduler:  g.clock,
		OnComplete: func(r Result) { g.result = &r },
	})
}

// Step applies input, then advances the clock by one frame.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.session == nil {
		return core.StepResult{State: g.State()}
	}

	g.handleInput(in)

	g.clock.Advance(g.frame)
	g.pending += g.frame
	for g.pending >= TickInterval {
		g.pending -= TickInterval
		g.session.Tick()
	}

	return core.StepResult{State: g.State()}
}

func (g *Game) handleInput(in core.InputFrame) {
	n := len(g.session.View().Answers)
	if n == 0 {
		return
	}
	g.selected = min(g.selected, n-1)

	switch {
	case in.Has(core.ActionUp), in.Has(core.ActionLeft):
		g.selected = (g.selected + n - 1) % n
	case in.Has(core.ActionDown), in.Has(core.ActionRight):
		g.selected = (g.selected + 1) % n
	}

	if in.Has(core.ActionConfirm) {
		g.answer(g.selected)
		return
	}
	for _, a := range core.AnswerActions {
		if idx, ok := a.AnswerIndex(); ok && in.Has(a) && idx < n {
			g.selected = idx
			g.answer(idx)
			return
		}
	}
}

func (g *Game) answer(idx int) {
	if out, _ := g.session.Answer(idx); out == OutcomeCorrect {
		g.selected = 0
	}
}

// State returns the platform-facing game state.
func (g *Game) State() core.GameState {
	if g.session == nil {
		return core.GameState{GameOver: g.err != nil}
	}
	v := g.session.View()
	return core.GameState{
		Score:    v.Score,
		Points:   v.Points,
		Lives:    v.Lives,
		GameOver: v.GameOver,
	}
}

// View returns the session snapshot, or false before the first Reset.
func (g *Game) View() (View, bool) {
	if g.session == nil {
		return View{}, false
	}
	return g.session.View(), true
}

// Result returns the final tally once the game is over.
func (g *Game) Result() (Result, bool) {
	if g.result == nil {
		return Result{}, false
	}
	return *g.result, true
}

// Err returns why the game could not start or ended early.
func (g *Game) Err() error {
	if g.err != nil {
		return g.err
	}
	if g.session != nil {
		return g.session.Err()
	}
	return nil
}

// Close stops the session's timers.
func (g *Game) Close() {
	if g.session != nil {
		g.session.Close()
	}
}

// Render draws the HUD, the problem and the answer choices.
func (g *Game) Render(dst *core.Screen) {
	w, h := dst.Width(), dst.Height()
	dst.Clear()

	if g.session == nil {
		dst.DrawTextCenteredColored(h/2-1, g.Title(), core.ColorBrightCyan)
		if g.err != nil {
			dst.DrawTextCenteredColored(h/2+1, g.err.Error(), core.ColorRed)
		}
		return
	}

	v := g.session.View()

	// HUD
	hud := fmt.Sprintf(" %s  Level %d  Score %d  Points %d", g.Title(), v.Level, v.Score, v.Points)
	if v.Custom {
		hud = fmt.Sprintf(" %s (custom)  Score %d  Points %d", g.Title(), v.Score, v.Points)
	}
	dst.DrawTextColored(0, 0, hud, core.ColorBrightWhite)
	lives := strings.Repeat("♥", v.Lives) + strings.Repeat("♡", StartingLives-v.Lives)
	dst.DrawTextColored(w-StartingLives-1, 0, lives, core.ColorBrightRed)
	dst.DrawHLine(0, 1, w, '─')

	// Time bar
	barW := max(w-12, 10)
	filled := core.Clamp(int(v.TimeRemaining/TimeLimit.Seconds()*float64(barW)), 0, barW)
	barColor := core.ColorGreen
	switch {
	case v.TimeRemaining <= 3:
		barColor = core.ColorRed
	case v.TimeRemaining <= 6:
		barColor = core.ColorYellow
	}
	dst.DrawTextColored(1, 2, strings.Repeat("█", filled), barColor)
	dst.DrawTextColored(1+filled, 2, strings.Repeat("░", barW-filled), core.ColorGray)
	dst.DrawText(barW+2, 2, fmt.Sprintf("%4.1fs", v.TimeRemaining))

	if v.GameOver {
		g.renderGameOver(dst, v)
		return
	}

	// Problem
	problemColor := core.ColorBrightWhite
	if v.Blinking {
		problemColor = core.ColorBrightGreen
	}
	question := fmt.Sprintf("%d %s %d = ?", v.OperandA, v.Symbol, v.OperandB)
	box := core.CenteredRect(w, h/2-5, utf8.RuneCountInString(question)+6, 3)
	dst.DrawBoxColored(box, problemColor)
	dst.DrawTextCenteredColored(h/2-4, question, problemColor)
	if v.Blinking && v.LastPoints > 0 {
		dst.DrawTextColored(box.Right()+1, h/2-4, fmt.Sprintf("+%d", v.LastPoints), core.ColorBrightGreen)
	}

	// Answers
	for i, a := range v.Answers {
		text := fmt.Sprintf("[%d] %d", i+1, a)
		color := core.ColorWhite
		switch {
		case v.ShowCorrect && i == v.CorrectIndex:
			color = core.ColorBrightGreen
			text += "  ✓"
		case v.ShowCorrect:
			color = core.ColorGray
		case i == g.selected:
			color = core.ColorBrightYellow
			text = "> " + text
		}
		dst.DrawTextCenteredColored(h/2+i, text, color)
	}

	if v.State == StateFeedback {
		dst.DrawTextCenteredColored(h-2, "Missed!", core.ColorRed)
	} else {
		dst.DrawTextCenteredColored(h-2, "1-4 or arrows+enter to answer", core.ColorGray)
	}
}

func (g *Game) renderGameOver(dst *core.Screen, v View) {
	h := dst.Height()
	dst.DrawTextCenteredColored(h/2-2, "GAME OVER", core.ColorBrightRed)
	dst.DrawTextCenteredColored(h/2, fmt.Sprintf("Score %d   Points %d", v.Score, v.Points), core.ColorBrightWhite)
	if err := g.Err(); err != nil {
		dst.DrawTextCenteredColored(h/2+1, err.Error(), core.ColorRed)
	}
	dst.DrawTextCenteredColored(h/2+3, "R to restart, B for menu, Q to quit", core.ColorGray)
}
