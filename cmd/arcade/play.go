package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/math-arcade/internal/core"
	"github.com/vovakirdan/math-arcade/internal/mathgame"
	"github.com/vovakirdan/math-arcade/internal/platform/tui"
	"github.com/vovakirdan/math-arcade/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Play a game",
	Long: `Start playing the specified game.

Controls:
  1-4          - Pick an answer
  Left/Right   - Move between answers
  Enter/Space  - Confirm the highlighted answer
  R            - Restart (after game over)
  B/Esc        - Leave the result screen
  Q/Ctrl+C     - Quit

Custom difficulty pins the game to level 1 with your own ranges:
  --tables      multiplication tables, "2-10" or "1,3,5" (1..12)
  --multiplier  multiplier range
  --range       addition and subtraction operand range
  --dividend    division dividend range
  --divisor     division divisor range
  --answers     number of answer choices (2..4)

Examples:
  arcade play multiplication
  arcade play multiplication --tables 6-9
  arcade play division --divisor 2-5 --answers 3
  arcade play addition --config ./my-levels.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	addCustomFlags(playCmd.Flags())
}

func runPlay(cmd *cobra.Command, args []string) {
	gameID := args[0]

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'arcade list' to see available games.")
		os.Exit(1)
	}

	custom, err := customFromFlags(cmd.Flags())
	if err == nil {
		err = validateCustom(gameID, custom)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mathgame.SetConfigPath(flagConfig)
	mathgame.SetCustomConfig(custom)

	cfg := terminalConfig()

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	// Continue without a leaderboard if the database is unavailable
	board, closeBoard, err := openBoard()
	var lb tui.Leaderboard
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
	} else {
		lb = board
	}

	runErr := tui.Run(game, lb, flagUser, cfg)

	if closeBoard != nil {
		closeBoard()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

// terminalConfig sizes the game to the current terminal, falling back to 80x24.
func terminalConfig() core.RuntimeConfig {
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: flagFPS, Seed: flagSeed}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW, cfg.ScreenH = w, h
	}
	return cfg
}
