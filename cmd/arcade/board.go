package main

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/math-arcade/internal/leaderboard"
	"github.com/vovakirdan/math-arcade/internal/storage"
)

// openBoard opens the local leaderboard. Its logger is silenced since the
// TUI owns the terminal.
func openBoard() (*leaderboard.Service, func(), error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, nil, err
	}

	svc := leaderboard.NewService(leaderboard.Config{
		Store:  store,
		Logger: log.New(io.Discard),
	})

	return svc, func() { store.Close() }, nil
}
