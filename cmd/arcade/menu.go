package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/math-arcade/internal/mathgame"
	"github.com/vovakirdan/math-arcade/internal/platform/tui"
	"github.com/vovakirdan/math-arcade/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick operations from an interactive menu",
	Long: `Start the arcade in menu mode. After each game you come back to the
menu; Tab opens the high scores of every operation.

Controls:
  Up/Down/j/k  - Choose an operation
  Enter/Space  - Play it
  Tab          - High scores
  Q            - Quit

The custom difficulty flags of 'arcade play' apply to every game started
from the menu.

Examples:
  arcade menu
  arcade menu --answers 2
  arcade menu --db ./scores.db`,
	RunE: runMenu,
}

func init() {
	addCustomFlags(menuCmd.Flags())
}

func runMenu(cmd *cobra.Command, _ []string) error {
	custom, err := customFromFlags(cmd.Flags())
	if err != nil {
		return err
	}
	mathgame.SetConfigPath(flagConfig)
	mathgame.SetCustomConfig(custom)

	var lb tui.Leaderboard
	board, closeBoard, err := openBoard()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
	} else {
		lb = board
		defer closeBoard()
	}

	cfg := terminalConfig()
	for {
		choice, err := tui.RunMenu(cfg)
		if err != nil {
			return err
		}
		cfg = choice.Config

		switch {
		case choice.Quit:
			return nil

		case choice.WantsScoreboard:
			back, err := tui.RunScoreboard(lb, cfg.ScreenW, cfg.ScreenH)
			if err != nil || !back {
				return err
			}

		default:
			// A custom setup may not make sense for every operation
			if err := validateCustom(choice.GameID, custom); err != nil {
				return fmt.Errorf("%s: %w", choice.GameID, err)
			}

			game, err := registry.Create(choice.GameID)
			if err != nil {
				return err
			}

			cfg.Seed = time.Now().UnixNano()
			if err := tui.Run(game, lb, flagUser, cfg); err != nil {
				return fmt.Errorf("running %s: %w", choice.GameID, err)
			}
		}
	}
}
