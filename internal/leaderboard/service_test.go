package leaderboard_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/math-arcade/internal/auth"
	"github.com/vovakirdan/math-arcade/internal/errors"
	"github.com/vovakirdan/math-arcade/internal/event"
	"github.com/vovakirdan/math-arcade/internal/leaderboard"
)

func asUser(id string) context.Context {
	return auth.WithUser(context.Background(), id)
}

func submit(score, points int) leaderboard.SubmitRequest {
	return leaderboard.SubmitRequest{GameType: "multiplication", Score: score, Points: points}
}

func positions(entries []leaderboard.Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Points
	}
	return out
}

func TestService_Submit(t *testing.T) {
	type outputs struct {
		standing leaderboard.Standing
		err      error
		store    *memStore
	}

	tests := map[string]struct {
		arrange func(m *memStore) (context.Context, leaderboard.SubmitRequest)
		assert  func(t *testing.T, out outputs)
	}{
		"first entry on an empty board ranks 1": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				return asUser("ada"), submit(5, 40)
			},
			assert: func(t *testing.T, out outputs) {
				require.NoError(t, out.err)
				assert.Equal(t, 1, out.standing.UserPosition)
				require.Len(t, out.standing.TopEntries, 1)
				assert.Equal(t, "ada", out.standing.TopEntries[0].UserID)
				assert.Len(t, out.standing.ContextEntries, 1)
			},
		},

		"entry between two others ranks 2": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				m.seed(150, 8)
				m.seed(80, 4)
				return asUser("ada"), submit(5, 100)
			},
			assert: func(t *testing.T, out outputs) {
				require.NoError(t, out.err)
				assert.Equal(t, 2, out.standing.UserPosition)
				assert.Equal(t, []int{150, 100, 80}, positions(out.standing.TopEntries))
			},
		},

		"exact tie ranks behind the earlier entry": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				m.seed(100, 5)
				return asUser("ada"), submit(5, 100)
			},
			assert: func(t *testing.T, out outputs) {
				require.NoError(t, out.err)
				assert.Equal(t, 2, out.standing.UserPosition)
				assert.Equal(t, "ada", out.standing.TopEntries[1].UserID)
			},
		},

		"tie written at the same instant ranks by insertion order": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				m.frozen = true
				m.seed(100, 5)
				m.seed(100, 5)
				return asUser("ada"), submit(5, 100)
			},
			assert: func(t *testing.T, out outputs) {
				require.NoError(t, out.err)
				assert.Equal(t, 3, out.standing.UserPosition)
			},
		},

		"context window spans three above and three below": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				for p := 200; p > 0; p -= 10 {
					m.seed(p, 1)
				}
				// Ranks between 110 and 100, at position 11.
				return asUser("ada"), submit(1, 105)
			},
			assert: func(t *testing.T, out outputs) {
				require.NoError(t, out.err)
				assert.Equal(t, 11, out.standing.UserPosition)
				assert.Len(t, out.standing.TopEntries, leaderboard.DefaultTopN)
				assert.Equal(t, []int{130, 120, 110, 105, 100, 90, 80}, positions(out.standing.ContextEntries))
			},
		},

		"context window near the top keeps seven entries": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				for p := 100; p > 0; p -= 10 {
					m.seed(p, 1)
				}
				return asUser("ada"), submit(1, 95)
			},
			assert: func(t *testing.T, out outputs) {
				require.NoError(t, out.err)
				assert.Equal(t, 2, out.standing.UserPosition)
				assert.Equal(t, []int{100, 95, 90, 80, 70, 60, 50}, positions(out.standing.ContextEntries))
			},
		},

		"other game types are not ranked against": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				m.seed(500, 50)
				return asUser("ada"), leaderboard.SubmitRequest{GameType: "division", Score: 1, Points: 10}
			},
			assert: func(t *testing.T, out outputs) {
				require.NoError(t, out.err)
				assert.Equal(t, 1, out.standing.UserPosition)
			},
		},

		"missing identity is unauthenticated and writes nothing": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				return context.Background(), submit(5, 40)
			},
			assert: func(t *testing.T, out outputs) {
				assert.ErrorIs(t, out.err, errors.ErrUnauthenticated)
				assert.True(t, errors.HasCode(out.err, errors.CodeUnauthenticated))
				assert.Zero(t, out.store.writes)
			},
		},

		"unknown game type is invalid": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				return asUser("ada"), leaderboard.SubmitRequest{GameType: "chess", Score: 1, Points: 1}
			},
			assert: func(t *testing.T, out outputs) {
				assert.True(t, errors.HasCode(out.err, errors.CodeInvalidArgument))
				assert.Zero(t, out.store.writes)
			},
		},

		"negative values are invalid": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				return asUser("ada"), submit(-1, 10)
			},
			assert: func(t *testing.T, out outputs) {
				assert.True(t, errors.HasCode(out.err, errors.CodeInvalidArgument))
				assert.Zero(t, out.store.writes)
			},
		},

		"write failure never yields a rank": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				m.failCreate = fmt.Errorf("disk full")
				return asUser("ada"), submit(5, 40)
			},
			assert: func(t *testing.T, out outputs) {
				assert.ErrorIs(t, out.err, errors.ErrRankingUnavailable)
				assert.Zero(t, out.standing.UserPosition)
			},
		},

		"count failure never yields a rank": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				m.failCount = fmt.Errorf("timeout")
				return asUser("ada"), submit(5, 40)
			},
			assert: func(t *testing.T, out outputs) {
				assert.ErrorIs(t, out.err, errors.ErrRankingUnavailable)
				assert.Zero(t, out.standing.UserPosition)
				assert.Equal(t, 1, out.store.writes)
			},
		},

		"list failure never yields a rank": {
			arrange: func(m *memStore) (context.Context, leaderboard.SubmitRequest) {
				m.failList = fmt.Errorf("timeout")
				return asUser("ada"), submit(5, 40)
			},
			assert: func(t *testing.T, out outputs) {
				assert.True(t, errors.HasCode(out.err, errors.CodeUnavailable))
				assert.Empty(t, out.standing.TopEntries)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m := newMemStore()
			ctx, req := tt.arrange(m)

			s := leaderboard.NewService(leaderboard.Config{Store: m})
			standing, err := s.Submit(ctx, req)

			tt.assert(t, outputs{standing: standing, err: err, store: m})
		})
	}
}

func TestService_SubmitPublishesEntryRanked(t *testing.T) {
	eb := event.NewBus()

	var (
		mu        sync.Mutex
		published []leaderboard.EventEntryRanked
	)
	eb.Subscribe(leaderboard.EventNameEntryRanked, func(ctx context.Context, e event.Event) error {
		mu.Lock()
		published = append(published, e.(leaderboard.EventEntryRanked))
		mu.Unlock()
		return nil
	})

	m := newMemStore()
	s := leaderboard.NewService(leaderboard.Config{Store: m, Events: eb})

	_, err := s.Submit(asUser("ada"), submit(3, 25))
	require.NoError(t, err)

	m.failCreate = fmt.Errorf("disk full")
	_, err = s.Submit(asUser("bob"), submit(3, 25))
	require.Error(t, err)

	eb.Stop()

	require.Len(t, published, 1, "only ranked entries are published")
	assert.Equal(t, "ada", published[0].Entry.UserID)
	assert.Equal(t, 1, published[0].Standing.UserPosition)
}

func TestService_SubmitConcurrent(t *testing.T) {
	m := newMemStore()
	s := leaderboard.NewService(leaderboard.Config{Store: m})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Submit(asUser(fmt.Sprintf("u%d", i)), submit(i, i*10))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	top, err := m.ListEntries(context.Background(), "multiplication", 100, 0)
	require.NoError(t, err)
	require.Len(t, top, 20)
	for i, e := range top {
		pos, err := m.CountBetter(context.Background(), e)
		require.NoError(t, err)
		assert.Equal(t, i, pos)
	}
}

func TestService_Standings(t *testing.T) {
	m := newMemStore()
	m.seed(150, 8)
	m.seed(100, 5)
	m.seed(80, 4)

	s := leaderboard.NewService(leaderboard.Config{Store: m})

	tests := map[string]struct {
		req  leaderboard.StandingsRequest
		want int
	}{
		"better than everyone": {req: leaderboard.StandingsRequest{GameType: "multiplication", Score: 9, Points: 200}, want: 1},
		"tie ranks behind":     {req: leaderboard.StandingsRequest{GameType: "multiplication", Score: 5, Points: 100}, want: 3},
		"last place":           {req: leaderboard.StandingsRequest{GameType: "multiplication", Score: 0, Points: 0}, want: 4},
		"empty game type":      {req: leaderboard.StandingsRequest{GameType: "addition", Score: 0, Points: 0}, want: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			standing, err := s.Standings(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, standing.UserPosition)
		})
	}

	assert.Equal(t, 3, m.writes, "standings must not write")

	_, err := s.Standings(context.Background(), leaderboard.StandingsRequest{GameType: "multiplication", Score: -1})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidArgument))
}

func TestService_RejectsResultsAboveLimits(t *testing.T) {
	m := newMemStore()
	m.seed(150, 8)
	m.seed(80, 4)
	m.seed(10, 1)
	s := leaderboard.NewService(leaderboard.Config{Store: m})

	tests := map[string]struct {
		score, points int
	}{
		"points past the limit":  {score: 1, points: leaderboard.MaxPoints + 1},
		"points that overflow":   {score: 1, points: 1 << 44},
		"score past the limit":   {score: leaderboard.MaxScore + 1, points: 1},
		"score far past a shift": {score: 1 << 21, points: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Standings(context.Background(), leaderboard.StandingsRequest{
				GameType: "multiplication", Score: tt.score, Points: tt.points,
			})
			assert.True(t, errors.HasCode(err, errors.CodeInvalidArgument), "standings: %v", err)

			_, err = s.Submit(asUser("ada"), leaderboard.SubmitRequest{
				GameType: "multiplication", Score: tt.score, Points: tt.points,
			})
			assert.True(t, errors.HasCode(err, errors.CodeInvalidArgument), "submit: %v", err)
		})
	}

	assert.Equal(t, 3, m.writes, "rejected results must not be written")

	st, err := s.Standings(context.Background(), leaderboard.StandingsRequest{
		GameType: "multiplication", Score: leaderboard.MaxScore, Points: leaderboard.MaxPoints,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, st.UserPosition)
}

func TestService_Stats(t *testing.T) {
	m := newMemStore()
	m.seed(10, 1)
	m.seed(20, 2)
	m.seed(15, 3)

	s := leaderboard.NewService(leaderboard.Config{Store: m})

	st, err := s.Stats(context.Background(), leaderboard.StatsRequest{GameType: "multiplication"})
	require.NoError(t, err)
	assert.Equal(t, 3, st.GamesPlayed)
	assert.Equal(t, 20, st.BestPoints)
	assert.True(t, decimal.NewFromInt(15).Equal(st.AvgPoints), "avg = %s", st.AvgPoints)

	_, err = s.Stats(context.Background(), leaderboard.StatsRequest{GameType: "chess"})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidArgument))
}

type recordingObserver struct {
	mu   sync.Mutex
	ops  []string
	errs int
}

func (r *recordingObserver) ObserveRanking(gameType, op string, d time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, gameType+"/"+op)
	if err != nil {
		r.errs++
	}
}

func TestService_Observer(t *testing.T) {
	obs := &recordingObserver{}
	s := leaderboard.NewService(leaderboard.Config{Store: newMemStore(), Observer: obs})

	_, _ = s.Submit(asUser("ada"), submit(1, 10))
	_, _ = s.Submit(context.Background(), submit(1, 10))
	_, _ = s.Standings(context.Background(), leaderboard.StandingsRequest{GameType: "addition"})

	assert.Equal(t, []string{"multiplication/submit", "multiplication/submit", "addition/standings"}, obs.ops)
	assert.Equal(t, 1, obs.errs)
}
