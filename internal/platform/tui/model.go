// Package tui provides the Bubble Tea integration for the arcade platform.
// It handles the terminal UI loop, input mapping, and game orchestration.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/math-arcade/internal/auth"
	"github.com/vovakirdan/math-arcade/internal/core"
	"github.com/vovakirdan/math-arcade/internal/errors"
	"github.com/vovakirdan/math-arcade/internal/leaderboard"
	"github.com/vovakirdan/math-arcade/internal/mathgame"
	"github.com/vovakirdan/math-arcade/internal/registry"
)

// rankTimeout bounds the post-game leaderboard call.
const rankTimeout = 10 * time.Second

// TickMsg is sent to trigger a game simulation tick.
type TickMsg time.Time

// tickCmd schedules the next frame of cfg.
func tickCmd(cfg core.RuntimeConfig) tea.Cmd {
	return tea.Tick(cfg.FrameInterval(), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Leaderboard ranks finished games. *leaderboard.Service satisfies it.
type Leaderboard interface {
	Submit(ctx context.Context, req leaderboard.SubmitRequest) (leaderboard.Standing, error)
	Standings(ctx context.Context, req leaderboard.StandingsRequest) (leaderboard.Standing, error)
	Stats(ctx context.Context, req leaderboard.StatsRequest) (leaderboard.Stats, error)
}

// resultReporter is implemented by games that hand off a final tally.
type resultReporter interface {
	Result() (mathgame.Result, bool)
}

// rankedMsg carries the leaderboard's answer for one finished session.
type rankedMsg struct {
	sessionID string
	standing  leaderboard.Standing
	err       error
}

// Model is the Bubble Tea model for running one game. When the game is
// over its result is ranked in the background and shown in a table.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	board      Leaderboard
	ctx        context.Context // carries the player's identity
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	gameState  core.GameState
	keyMapper  *KeyMapper
	quitOnBack bool
	quitting   bool
	backToMenu bool

	// Post-game ranking
	submitted bool
	ranking   bool
	result    mathgame.Result
	standing  *leaderboard.Standing
	rankErr   error
	results   table.Model
}

// NewModel creates a model for game played by user. board may be nil, in
// which case results are not ranked.
func NewModel(game registry.Game, board Leaderboard, user string, cfg core.RuntimeConfig) Model {
	cfg = cfg.WithDefaults()

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		board:      board,
		ctx:        auth.WithUser(context.Background(), user),
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick()

	case rankedMsg:
		return m.handleRanked(msg), nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.inputFrame.Has(core.ActionBack) && m.gameState.GameOver {
		m.backToMenu = true
		if m.quitOnBack {
			return m, tea.Quit
		}
	}

	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.submitted, m.ranking = false, false
		m.standing, m.rankErr = nil, nil
		m.inputFrame.Clear()
		return m, tickCmd(m.config)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.inputFrame.Clear()

	// Rank once per game over
	if m.gameState.GameOver && !m.submitted {
		m.submitted = true
		if rr, ok := m.game.(resultReporter); ok && m.board != nil {
			if res, ok := rr.Result(); ok {
				m.result = res
				m.ranking = true
				return m, tea.Batch(tickCmd(m.config), m.rankCmd(res))
			}
		}
	}

	return m, tickCmd(m.config)
}

// rankCmd submits res off the UI goroutine.
func (m Model) rankCmd(res mathgame.Result) tea.Cmd {
	board, parent := m.board, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, rankTimeout)
		defer cancel()

		st, err := board.Submit(ctx, leaderboard.SubmitRequest{
			GameType: res.GameType,
			Score:    res.Score,
			Points:   res.Points,
		})
		return rankedMsg{sessionID: res.SessionID, standing: st, err: err}
	}
}

func (m Model) handleRanked(msg rankedMsg) Model {
	// A restart may have started a new session meanwhile
	if !m.ranking || msg.sessionID != m.result.SessionID {
		return m
	}

	m.ranking = false
	if msg.err != nil {
		m.rankErr = msg.err
		return m
	}

	st := msg.standing
	m.standing = &st
	m.results = newStandingTable(st)
	return m
}

// newStandingTable lists the entries around the player with their row selected.
func newStandingTable(st leaderboard.Standing) table.Model {
	offset, _ := leaderboard.Window(st.UserPosition, leaderboard.DefaultRadius)

	rows := make([]table.Row, len(st.ContextEntries))
	for i, e := range st.ContextEntries {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", offset+i+1),
			e.UserID,
			fmt.Sprintf("%d", e.Points),
			fmt.Sprintf("%d", e.Score),
		}
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Player", Width: 16},
			{Title: "Points", Width: 8},
			{Title: "Score", Width: 7},
		}),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(true),
	)
	t.SetStyles(tableStyles())
	t.SetCursor(st.UserPosition - 1 - offset)
	return t
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".arcade", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp)
	path := filepath.Join(dir, filename)

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.gameState.GameOver && m.submitted && (m.ranking || m.standing != nil || m.rankErr != nil) {
		return m.renderResults()
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

func (m Model) renderResults() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	b.WriteString(titleStyle.Render("GAME OVER"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s   Score %d   Points %d", m.game.Title(), m.result.Score, m.result.Points))
	b.WriteString("\n\n")

	switch {
	case m.ranking:
		b.WriteString(dimStyle.Render("Ranking your game..."))
	case m.rankErr != nil:
		e := errors.Convert(m.rankErr)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).
			Render("Not ranked: " + e.Message))
	case m.standing != nil:
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).
			Render(fmt.Sprintf("You placed #%d", m.standing.UserPosition)))
		b.WriteString("\n\n")
		b.WriteString(m.results.View())
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("R: play again  B: menu  Q: quit"))

	return lipgloss.Place(m.config.ScreenW, m.config.ScreenH, lipgloss.Center, lipgloss.Center, b.String())
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program for game. It returns when the player
// quits or leaves the game-over screen.
func Run(game registry.Game, board Leaderboard, user string, cfg core.RuntimeConfig) error {
	model := NewModel(game, board, user, cfg)
	model.quitOnBack = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	game.Close()
	return err
}
