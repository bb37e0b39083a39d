// Package leaderboard ranks finished games against every earlier entry of
// the same game type.
//
// Entries are totally ordered by points (desc), score (desc), CreatedAt
// (asc) and finally ID (asc), so two entries never tie. A player's position
// is 1 plus the number of entries strictly ahead of their persisted entry.
package leaderboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Results above these limits are rejected. Every store ranks results up to
// them exactly, including Redis, which packs both into one float64.
const (
	MaxScore  = 1<<20 - 1
	MaxPoints = 1<<33 - 1
)

// Entry is one persisted game result. It never changes once written.
type Entry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	GameType  string    `json:"gameType"`
	Score     int       `json:"score"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewEntry is a result waiting to be persisted. The store assigns ID and CreatedAt.
type NewEntry struct {
	UserID   string
	GameType string
	Score    int
	Points   int
}

// Compare orders a before b when it ranks higher. It returns 0 only for
// the same entry.
func Compare(a, b Entry) int {
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Better reports whether a ranks strictly ahead of b.
func Better(a, b Entry) bool {
	return Compare(a, b) < 0
}

// Sort orders entries best first.
func Sort(entries []Entry) {
	slices.SortFunc(entries, Compare)
}

// Stats summarizes one game type.
type Stats struct {
	GameType    string          `json:"gameType"`
	GamesPlayed int             `json:"gamesPlayed"`
	BestPoints  int             `json:"bestPoints"`
	AvgPoints   decimal.Decimal `json:"avgPoints"`
}
