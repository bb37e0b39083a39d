package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/math-arcade/internal/leaderboard"
	"github.com/vovakirdan/math-arcade/internal/registry"
)

var (
	flagScore  int
	flagPoints int
)

var scoresCmd = &cobra.Command{
	Use:   "scores <game>",
	Short: "Show the leaderboard of a game",
	Long: `Display the top 10 entries and summary stats for the specified game.

With --score and --points, also shows where such a result would place.
Nothing is recorded.

Examples:
  arcade scores multiplication
  arcade scores division --score 12 --points 300`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScore, "score", 0, "Hypothetical score")
	scoresCmd.Flags().IntVar(&flagPoints, "points", 0, "Hypothetical points")
}

func runScores(cmd *cobra.Command, args []string) {
	gameID := args[0]

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'arcade list' to see available games.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}
	title := game.Title()

	board, closeBoard, err := openBoard()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer closeBoard()

	ctx := context.Background()

	st, err := board.Standings(ctx, leaderboard.StandingsRequest{
		GameType: gameID,
		Score:    flagScore,
		Points:   flagPoints,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		return
	}

	fmt.Printf("Leaderboard - %s\n", title)
	fmt.Println()

	if len(st.TopEntries) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'arcade play %s' to set the first high score!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-16s  %-8s  %-6s  %s\n", "Rank", "Player", "Points", "Score", "Date")
	fmt.Printf("  %-4s  %-16s  %-8s  %-6s  %s\n", "----", "------", "------", "-----", "----")
	for i, e := range st.TopEntries {
		fmt.Printf("  %-4d  %-16s  %-8d  %-6d  %s\n", i+1, e.UserID, e.Points, e.Score, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if stats, err := board.Stats(ctx, leaderboard.StatsRequest{GameType: gameID}); err == nil {
		fmt.Printf("Games: %d   Best: %d   Average: %s\n", stats.GamesPlayed, stats.BestPoints, stats.AvgPoints.StringFixed(2))
	}

	if cmd.Flags().Changed("score") || cmd.Flags().Changed("points") {
		fmt.Printf("A score of %d with %d points would place #%d\n", flagScore, flagPoints, st.UserPosition)
	}
}
