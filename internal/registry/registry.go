// Package registry lists the playable games. Games register themselves in
// init() so the menu, the CLI and the SSH server can offer them without
// hardcoded imports.
package registry

import (
	"fmt"
	"sync"

	"github.com/vovakirdan/math-arcade/internal/core"
)

// Game is a fixed-step game the platform drives. Implementations are
// frontend-free: the platform maps input, owns the clock and draws the
// screen they render into.
type Game interface {
	// ID is the game type, e.g. "multiplication". It keys the leaderboard.
	ID() string

	// Title is the display name.
	Title() string

	// Reset starts a fresh game. Called once at start and on every restart.
	Reset(cfg core.RuntimeConfig)

	// Step applies one frame of input and advances the simulation.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into dst.
	Render(dst *core.Screen)

	// State returns the current score, lives and game-over flag.
	State() core.GameState

	// Close releases timers held by the running game.
	Close()
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a game.
type Factory func() Game

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
	games     []GameInfo // registration order
)

// Register adds a game factory to the registry.
// Panics if a game with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	factories[id] = f
	games = append(games, GameInfo{ID: id, Title: f().Title()})
}

// List returns every registered game in registration order.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	return append([]GameInfo(nil), games...)
}

// Create instantiates a new game by its ID.
func Create(id string) (Game, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return f(), nil
}

// Exists reports whether id is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
