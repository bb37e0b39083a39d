package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/math-arcade/internal/core"
	"github.com/vovakirdan/math-arcade/internal/mathgame"
	"github.com/vovakirdan/math-arcade/internal/registry"
)

// MenuItem is one playable operation.
type MenuItem struct {
	GameID string
	Title  string
	Symbol string
}

func (it MenuItem) label() string {
	if it.Symbol == "" {
		return it.Title
	}
	return fmt.Sprintf("%s  %s", it.Symbol, it.Title)
}

// MenuModel picks the operation to practice. Selecting an item or asking for
// the scoreboard ends the menu's own program; SessionModel reads the outcome
// instead.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	config    core.RuntimeConfig
	keyMapper *KeyMapper

	selected       *MenuItem
	openScoreboard bool
	quitting       bool
}

func NewMenuModel(cfg core.RuntimeConfig) MenuModel {
	var items []MenuItem
	for _, g := range registry.List() {
		it := MenuItem{GameID: g.ID, Title: g.Title}
		if op, err := mathgame.ParseGameType(g.ID); err == nil {
			it.Symbol = op.Symbol()
		}
		items = append(items, it)
	}

	return MenuModel{items: items, config: cfg, keyMapper: NewKeyMapper()}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.config.ScreenW, m.config.ScreenH = msg.Width, msg.Height

	case tea.KeyMsg:
		switch m.keyMapper.MapKeyToMenuAction(msg) {
		case MenuActionQuit:
			m.quitting = true
			return m, tea.Quit
		case MenuActionUp:
			m.cursor = core.Clamp(m.cursor-1, 0, len(m.items)-1)
		case MenuActionDown:
			m.cursor = core.Clamp(m.cursor+1, 0, len(m.items)-1)
		case MenuActionScoreboard:
			m.openScoreboard = true
			return m, tea.Quit
		case MenuActionSelect:
			if len(m.items) == 0 {
				return m, nil
			}
			it := m.items[m.cursor]
			m.selected = &it
			return m, tea.Quit
		}
	}

	return m, nil
}

var (
	menuTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).MarginBottom(1)
	menuSubtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginBottom(1)
	menuItemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	menuCursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	menuHelpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	lines := []string{
		menuTitleStyle.Render("M A T H   A R C A D E"),
		menuSubtitleStyle.Render("Pick an operation to practice"),
	}
	for i, it := range m.items {
		if i == m.cursor {
			lines = append(lines, menuCursorStyle.Render("> "+it.label()))
		} else {
			lines = append(lines, menuItemStyle.Render(it.label()))
		}
	}
	lines = append(lines, menuHelpStyle.Render("↑/↓ choose   enter play   tab high scores   q quit"))

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if m.config.ScreenW <= 0 || m.config.ScreenH <= 0 {
		return body
	}
	return lipgloss.Place(m.config.ScreenW, m.config.ScreenH, lipgloss.Center, lipgloss.Center, body)
}

// Selected returns the chosen item, or nil.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// Config returns the runtime config with the latest window size.
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// MenuResult is what the player chose in a standalone menu run.
type MenuResult struct {
	GameID          string
	Config          core.RuntimeConfig
	WantsScoreboard bool
	Quit            bool
}

// RunMenu shows the menu in its own program.
func RunMenu(cfg core.RuntimeConfig) (MenuResult, error) {
	final, err := tea.NewProgram(NewMenuModel(cfg), tea.WithAltScreen()).Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}

	m, ok := final.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}

	res := MenuResult{Config: m.Config()}
	switch {
	case m.WantsScoreboard():
		res.WantsScoreboard = true
	case m.Selected() != nil:
		res.GameID = m.Selected().GameID
	default:
		res.Quit = true
	}
	return res, nil
}
