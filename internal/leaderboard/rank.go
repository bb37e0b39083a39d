package leaderboard

import (
	"math"
	"slices"
	"time"
)

// Ranking defaults.
const (
	DefaultTopN   = 10
	DefaultRadius = 3
)

// probeTime is later than any real entry, so a probe ranks behind every tie.
var probeTime = time.Unix(0, math.MaxInt64).UTC()

// Probe returns a hypothetical entry for ranking a result that was never
// written. Existing entries with the same points and score rank ahead of it.
func Probe(gameType string, score, points int) Entry {
	return Entry{
		ID:        math.MaxInt64,
		GameType:  gameType,
		Score:     score,
		Points:    points,
		CreatedAt: probeTime,
	}
}

// IsProbe reports whether e was built by Probe.
func IsProbe(e Entry) bool {
	return e.ID == math.MaxInt64 && e.CreatedAt.Equal(probeTime)
}

// PositionBySort returns 1 + the index of e in the sorted union of entries
// and e. e is not added twice when it is already present.
func PositionBySort(entries []Entry, e Entry) int {
	all := slices.Clone(entries)
	if !slices.ContainsFunc(all, func(x Entry) bool { return Compare(x, e) == 0 }) {
		all = append(all, e)
	}
	Sort(all)

	return 1 + slices.IndexFunc(all, func(x Entry) bool { return Compare(x, e) == 0 })
}

// PositionByCount returns 1 + the number of entries strictly better than e.
func PositionByCount(entries []Entry, e Entry) int {
	n := 0
	for _, x := range entries {
		if Better(x, e) {
			n++
		}
	}
	return n + 1
}

// Window returns the offset and limit of the entries from radius places
// above to radius places below position. Near the top the window keeps its
// size and extends further down; near the bottom the store returns fewer rows.
func Window(position, radius int) (offset, limit int) {
	radius = max(radius, 0)
	return max(position-1-radius, 0), 2*radius + 1
}
