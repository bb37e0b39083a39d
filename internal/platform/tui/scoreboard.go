package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/math-arcade/internal/errors"
	"github.com/vovakirdan/math-arcade/internal/leaderboard"
	"github.com/vovakirdan/math-arcade/internal/mathgame"
	"github.com/vovakirdan/math-arcade/internal/registry"
)

// boardChrome is the number of rows around the table: title, tabs, stats and help.
const boardChrome = 9

type boardKeys struct {
	Prev key.Binding
	Next key.Binding
	Up   key.Binding
	Down key.Binding
	Back key.Binding
	Quit key.Binding
}

func (k boardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Up, k.Down, k.Back, k.Quit}
}

func (k boardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var scoreboardKeys = boardKeys{
	Prev: key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←", "prev operation")),
	Next: key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→", "next operation")),
	Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
	Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
	Back: key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "menu")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	boardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	boardTabStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	boardActiveTab  = boardTabStyle.Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	boardFrameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	boardNoteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Padding(1, 4)
	boardErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Padding(1, 4)
)

// boardLoadedMsg carries the top entries and stats of one game type.
type boardLoadedMsg struct {
	gameType string
	top      []leaderboard.Entry
	stats    leaderboard.Stats
	err      error
}

// ScoreboardModel shows the top entries of each math game, one game type at a time.
type ScoreboardModel struct {
	board   Leaderboard
	games   []registry.GameInfo
	current int

	loading bool
	entries []leaderboard.Entry
	stats   leaderboard.Stats
	loadErr error

	table     table.Model
	help      help.Model
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a scoreboard over board. The first game's
// entries are requested by Init.
func NewScoreboardModel(board Leaderboard, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		board:  board,
		games:  registry.List(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.loading = m.canLoad()
	m.help.Width = width

	m.table = table.New(
		table.WithColumns([]table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Player", Width: 16},
			{Title: "Points", Width: 8},
			{Title: "Score", Width: 7},
			{Title: "When", Width: 13},
		}),
		table.WithHeight(max(height-boardChrome, 3)),
		table.WithFocused(true),
	)
	m.table.SetStyles(tableStyles())
	return m
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	return s
}

func (m ScoreboardModel) canLoad() bool {
	return m.board != nil && len(m.games) > 0
}

func (m ScoreboardModel) gameType() string {
	if len(m.games) == 0 {
		return ""
	}
	return m.games[m.current].ID
}

// loadCmd fetches the current game's board off the UI goroutine.
func (m ScoreboardModel) loadCmd() tea.Cmd {
	if !m.canLoad() {
		return nil
	}

	board, gameType := m.board, m.gameType()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), rankTimeout)
		defer cancel()

		msg := boardLoadedMsg{gameType: gameType}

		// An empty probe carries the top entries without writing anything
		st, err := board.Standings(ctx, leaderboard.StandingsRequest{GameType: gameType})
		if err != nil {
			msg.err = err
			return msg
		}
		msg.top = st.TopEntries

		if stats, err := board.Stats(ctx, leaderboard.StatsRequest{GameType: gameType}); err == nil {
			msg.stats = stats
		}
		return msg
	}
}

func (m ScoreboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		// The player may have switched games while this was loading
		if msg.gameType != m.gameType() {
			return m, nil
		}
		m.loading = false
		m.entries, m.stats, m.loadErr = msg.top, msg.stats, msg.err
		m.table.SetRows(boardRows(m.entries))
		m.table.GotoTop()
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-boardChrome, 3))
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, scoreboardKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, scoreboardKeys.Back):
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, scoreboardKeys.Next):
			return m.switchGame(1)
		case key.Matches(msg, scoreboardKeys.Prev):
			return m.switchGame(-1)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ScoreboardModel) switchGame(step int) (tea.Model, tea.Cmd) {
	if len(m.games) == 0 {
		return m, nil
	}
	m.current = (m.current + step + len(m.games)) % len(m.games)
	m.entries, m.stats, m.loadErr = nil, leaderboard.Stats{}, nil
	m.table.SetRows(nil)
	m.loading = m.canLoad()
	return m, m.loadCmd()
}

func boardRows(entries []leaderboard.Entry) []table.Row {
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			e.UserID,
			strconv.Itoa(e.Points),
			strconv.Itoa(e.Score),
			e.CreatedAt.Local().Format("Jan 02 15:04"),
		}
	}
	return rows
}

func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	parts := []string{boardTitleStyle.Render("HIGH SCORES"), m.renderTabs(), ""}
	if m.stats.GamesPlayed > 0 {
		parts = append(parts, fmt.Sprintf("%d games   best %d   average %s",
			m.stats.GamesPlayed, m.stats.BestPoints, m.stats.AvgPoints.StringFixed(2)))
	}
	parts = append(parts, boardFrameStyle.Render(m.renderBody()), m.help.View(scoreboardKeys))

	body := lipgloss.JoinVertical(lipgloss.Center, parts...)
	if m.width <= 0 || m.height <= 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, body)
}

func (m ScoreboardModel) renderTabs() string {
	tabs := make([]string, len(m.games))
	for i, g := range m.games {
		label := g.Title
		if op, err := mathgame.ParseGameType(g.ID); err == nil {
			label = op.Symbol() + " " + g.Title
		}

		if i == m.current {
			tabs[i] = boardActiveTab.Render(label)
		} else {
			tabs[i] = boardTabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m ScoreboardModel) renderBody() string {
	switch {
	case m.loading:
		return boardNoteStyle.Render("Loading...")
	case m.loadErr != nil:
		return boardErrorStyle.Render("Leaderboard unavailable: " + errors.Convert(m.loadErr).Message)
	case len(m.entries) == 0:
		return boardNoteStyle.Render("Nobody has ranked here yet.")
	default:
		return m.table.View()
	}
}

// IsGoingBack reports whether the player asked for the menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard in its own program and reports whether
// the player wants the menu back.
func RunScoreboard(board Leaderboard, width, height int) (bool, error) {
	final, err := tea.NewProgram(NewScoreboardModel(board, width, height), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}

	m, ok := final.(ScoreboardModel)
	return ok && m.IsGoingBack(), nil
}
