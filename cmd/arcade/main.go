// arcade is a terminal arithmetic arcade: timed multiple-choice drills with
// lives, levels and per-game leaderboards.
//
// Usage:
//
//	arcade list              - List available games
//	arcade play <game>       - Play a game
//	arcade menu              - Start menu to pick games interactively
//	arcade serve             - Start SSH, HTTP and gRPC servers
//	arcade scores <game>     - Show the leaderboard of a game
//	arcade token <user>      - Mint an API token
//
// Global flags:
//
//	--fps <rate>     - Set tick rate (default: 60)
//	--seed <value>   - Set RNG seed for reproducible problems
//	--db <path>      - Set database path (default: ~/.arcade/scores.db)
//	--config <path>  - Set level table YAML
//	--user <name>    - Name recorded on the leaderboard (default: $USER)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import games to register them
	_ "github.com/vovakirdan/math-arcade/internal/mathgame"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   int64
	flagDBPath string
	flagConfig string
	flagUser   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Math Arcade - arithmetic drills in your terminal",
	Long: `Math Arcade is a terminal game of quick arithmetic. Pick the right
answer before the timer runs out; three misses and the game is over.

Available commands:
  list     - Show all available games
  play     - Play a specific game directly
  menu     - Interactive game picker menu
  serve    - Start the SSH, HTTP and gRPC servers
  scores   - View a leaderboard
  token    - Mint an API token

Examples:
  arcade list
  arcade play multiplication
  arcade play multiplication --tables 2-5
  arcade menu
  arcade serve --server-config ./arcade.yaml
  arcade scores division --score 12 --points 300`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to level table YAML")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", os.Getenv("USER"), "Player name for the leaderboard")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(tokenCmd)
}
