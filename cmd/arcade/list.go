package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/math-arcade/internal/mathgame"
	"github.com/vovakirdan/math-arcade/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the math games",
	Long:  `Shows every operation you can practice, with a sample level 1 problem.`,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	mathgame.SetConfigPath(flagConfig)
	dm, err := mathgame.Difficulty()
	if err != nil {
		return err
	}

	games := registry.List()
	if len(games) == 0 {
		fmt.Println("No games available.")
		return nil
	}

	idWidth := len("ID")
	for _, g := range games {
		idWidth = max(idWidth, len(g.ID))
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	fmt.Printf("  %-*s  %-2s  %-16s  %s\n", idWidth, "ID", "OP", "TITLE", "SAMPLE")
	for _, g := range games {
		op, err := mathgame.ParseGameType(g.ID)
		if err != nil {
			continue
		}
		p := mathgame.GenerateProblem(rng, op, dm.Profile(1))
		fmt.Printf("  %-*s  %-2s  %-16s  %s\n", idWidth, g.ID, op.Symbol(), g.Title, p)
	}

	fmt.Println()
	fmt.Println("Run 'arcade play <id>' to practice, or 'arcade scores <id>' for the leaderboard.")
	return nil
}
