package storage_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/math-arcade/internal/errors"
	"github.com/vovakirdan/math-arcade/internal/leaderboard"
	"github.com/vovakirdan/math-arcade/internal/storage"
)

func makeRedisStore(t *testing.T) (*storage.RedisStore, *miniredis.Miniredis) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	rs := miniredis.RunT(t)
	rs.SetTime(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	rc := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{rs.Addr()},
	})
	t.Cleanup(func() { rc.Close() })
	require.NoError(t, rc.Ping(ctx).Err(), "should be able to ping redis")

	return storage.NewRedisStore(rc, "test"), rs
}

func TestRedisStore_CreateAndList(t *testing.T) {
	s, rs := makeRedisStore(t)
	ctx := context.Background()

	type in struct {
		user          string
		score, points int
		tick          bool
	}
	inputs := []in{
		{"a", 5, 100, true},
		{"b", 8, 150, true},
		{"c", 6, 100, true},
		{"d", 5, 100, false}, // same server time as e
		{"e", 5, 100, true},
		{"f:colon", 4, 80, true},
	}

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	created := make(map[string]leaderboard.Entry)
	for _, x := range inputs {
		rs.SetTime(now)
		e, err := s.CreateEntry(ctx, leaderboard.NewEntry{UserID: x.user, GameType: "division", Score: x.score, Points: x.points})
		require.NoError(t, err)
		assert.Equal(t, now, e.CreatedAt)
		created[x.user] = e
		if x.tick {
			now = now.Add(time.Second)
		}
	}

	entries, err := s.ListEntries(ctx, "division", 10, 0)
	require.NoError(t, err)

	users := make([]string, len(entries))
	for i, e := range entries {
		users[i] = e.UserID
		assert.Equal(t, created[e.UserID], e, "entry round-trips through the sorted set")

		better, err := s.CountBetter(ctx, e)
		require.NoError(t, err)
		assert.Equal(t, i, better, "CountBetter(%s)", e.UserID)
	}
	assert.Equal(t, []string{"b", "c", "a", "d", "e", "f:colon"}, users)

	page, err := s.ListEntries(ctx, "division", 2, 3)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "d", page[0].UserID)
	assert.Equal(t, "e", page[1].UserID)

	other, err := s.ListEntries(ctx, "addition", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRedisStore_RankingScenarios(t *testing.T) {
	tests := map[string]struct {
		existing [][2]int
		entry    [2]int
		want     int
	}{
		"empty board":         {entry: [2]int{5, 100}, want: 1},
		"between two entries": {existing: [][2]int{{8, 150}, {4, 80}}, entry: [2]int{5, 100}, want: 2},
		"exact tie":           {existing: [][2]int{{5, 100}}, entry: [2]int{5, 100}, want: 2},
		"zero result":         {existing: [][2]int{{0, 0}}, entry: [2]int{0, 0}, want: 2},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s, rs := makeRedisStore(t)
			ctx := context.Background()
			now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

			for _, ex := range tt.existing {
				rs.SetTime(now)
				_, err := s.CreateEntry(ctx, leaderboard.NewEntry{UserID: "x", GameType: "addition", Score: ex[0], Points: ex[1]})
				require.NoError(t, err)
				now = now.Add(time.Second)
			}

			rs.SetTime(now)
			e, err := s.CreateEntry(ctx, leaderboard.NewEntry{UserID: "me", GameType: "addition", Score: tt.entry[0], Points: tt.entry[1]})
			require.NoError(t, err)

			better, err := s.CountBetter(ctx, e)
			require.NoError(t, err)
			assert.Equal(t, tt.want, better+1)

			all, err := s.ListEntries(ctx, "addition", 100, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, leaderboard.PositionBySort(all, e))
		})
	}
}

func TestRedisStore_ProbeAndStats(t *testing.T) {
	s, _ := makeRedisStore(t)
	ctx := context.Background()

	for _, p := range []int{150, 100, 80} {
		_, err := s.CreateEntry(ctx, leaderboard.NewEntry{UserID: "x", GameType: "subtraction", Score: 5, Points: p})
		require.NoError(t, err)
	}

	n, err := s.CountBetter(ctx, leaderboard.Probe("subtraction", 5, 100))
	require.NoError(t, err)
	assert.Equal(t, 2, n, "existing ties rank ahead of a probe")

	stats, err := s.GameStats(ctx, "subtraction")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.GamesPlayed)
	assert.Equal(t, 150, stats.BestPoints)
	assert.True(t, decimal.RequireFromString("110").Equal(stats.AvgPoints), "avg = %s", stats.AvgPoints)

	empty, err := s.GameStats(ctx, "addition")
	require.NoError(t, err)
	assert.Zero(t, empty.GamesPlayed)
	assert.True(t, empty.AvgPoints.IsZero())
}

func TestRedisStore_RejectsOutOfRange(t *testing.T) {
	s, _ := makeRedisStore(t)

	ctx := context.Background()

	_, err := s.CreateEntry(ctx, leaderboard.NewEntry{UserID: "x", GameType: "addition", Score: 1 << 21, Points: 1})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidArgument), "create: %v", err)

	_, err = s.CountBetter(ctx, leaderboard.Probe("addition", 1, 1<<44))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidArgument), "count: %v", err)

	n, err := s.CountBetter(ctx, leaderboard.Probe("addition", leaderboard.MaxScore, leaderboard.MaxPoints))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStore_ServiceRejectsOutOfRange(t *testing.T) {
	s, _ := makeRedisStore(t)
	svc := leaderboard.NewService(leaderboard.Config{Store: s})

	ctx := context.Background()
	for _, p := range []int{150, 80, 10} {
		_, err := s.CreateEntry(ctx, leaderboard.NewEntry{UserID: "seed", GameType: "multiplication", Score: 1, Points: p})
		require.NoError(t, err)
	}

	_, err := svc.Standings(ctx, leaderboard.StandingsRequest{GameType: "multiplication", Points: 1 << 44})
	e := errors.Convert(err)
	assert.Equal(t, errors.CodeInvalidArgument, e.Code)
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatusCode())

	_, err = svc.Submit(authCtx("ada"), leaderboard.SubmitRequest{GameType: "multiplication", Score: 1 << 21})
	e = errors.Convert(err)
	assert.Equal(t, errors.CodeInvalidArgument, e.Code)
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatusCode())

	st, err := svc.Standings(ctx, leaderboard.StandingsRequest{GameType: "multiplication", Points: leaderboard.MaxPoints})
	require.NoError(t, err)
	assert.Equal(t, 1, st.UserPosition)
}

func TestRedisStore_WithService(t *testing.T) {
	s, _ := makeRedisStore(t)
	svc := leaderboard.NewService(leaderboard.Config{Store: s})

	ctx := context.Background()
	for _, p := range []int{150, 80} {
		_, err := s.CreateEntry(ctx, leaderboard.NewEntry{UserID: "seed", GameType: "multiplication", Score: 1, Points: p})
		require.NoError(t, err)
	}

	st, err := svc.Submit(authCtx("ada"), leaderboard.SubmitRequest{GameType: "multiplication", Score: 5, Points: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, st.UserPosition)
	require.Len(t, st.TopEntries, 3)
	assert.Equal(t, "ada", st.TopEntries[1].UserID)
}
