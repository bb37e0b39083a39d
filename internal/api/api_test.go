package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/math-arcade/internal/api"
	"github.com/vovakirdan/math-arcade/internal/auth"
	"github.com/vovakirdan/math-arcade/internal/leaderboard"
	"github.com/vovakirdan/math-arcade/internal/storage"
)

type testEnv struct {
	engine *gin.Engine
	tokens *auth.Tokens
	store  *storage.SQLiteStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tokens, err := auth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	a := api.New(api.Config{
		Leaderboard: leaderboard.NewService(leaderboard.Config{Store: store}),
		Tokens:      tokens,
	})

	e := gin.New()
	a.Register(e)

	return &testEnv{engine: e, tokens: tokens, store: store}
}

func (env *testEnv) do(t *testing.T, method, target, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		token, err := env.tokens.Issue(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func (env *testEnv) seed(t *testing.T, gameType string, pointsAndScores ...[2]int) {
	t.Helper()
	for _, ps := range pointsAndScores {
		_, err := env.store.CreateEntry(context.Background(), leaderboard.NewEntry{
			UserID:   "seed",
			GameType: gameType,
			Points:   ps[0],
			Score:    ps[1],
		})
		require.NoError(t, err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSubmitEntry(t *testing.T) {
	tests := map[string]struct {
		user         string
		body         any
		wantStatus   int
		wantPosition int
	}{
		"ranked": {
			user:         "ada",
			body:         map[string]any{"gameType": "addition", "score": 5, "points": 100},
			wantStatus:   http.StatusOK,
			wantPosition: 2,
		},
		"zero result is valid": {
			user:         "ada",
			body:         map[string]any{"gameType": "addition", "score": 0, "points": 0},
			wantStatus:   http.StatusOK,
			wantPosition: 3,
		},
		"no identity": {
			body:       map[string]any{"gameType": "addition", "score": 5, "points": 100},
			wantStatus: http.StatusUnauthorized,
		},
		"malformed json": {
			user:       "ada",
			body:       `{"gameType":`,
			wantStatus: http.StatusBadRequest,
		},
		"missing points": {
			user:       "ada",
			body:       map[string]any{"gameType": "addition", "score": 5},
			wantStatus: http.StatusBadRequest,
		},
		"unknown game type": {
			user:       "ada",
			body:       map[string]any{"gameType": "modulo", "score": 5, "points": 100},
			wantStatus: http.StatusBadRequest,
		},
		"points above the limit": {
			user:       "ada",
			body:       map[string]any{"gameType": "addition", "score": 5, "points": int64(1) << 44},
			wantStatus: http.StatusBadRequest,
		},
		"negative score": {
			user:       "ada",
			body:       map[string]any{"gameType": "addition", "score": -1, "points": 100},
			wantStatus: http.StatusBadRequest,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			env.seed(t, "addition", [2]int{150, 8}, [2]int{80, 4})

			w := env.do(t, http.MethodPost, "/api/leaderboard", tt.user, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus != http.StatusOK {
				var e struct {
					Message string `json:"message"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
				assert.NotEmpty(t, e.Message)
				return
			}

			var st leaderboard.Standing
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
			assert.Equal(t, tt.wantPosition, st.UserPosition)
			assert.Len(t, st.TopEntries, 3)
			assert.Len(t, st.ContextEntries, 3)
		})
	}
}

func TestSubmitEntry_InvalidToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/leaderboard",
		bytes.NewBufferString(`{"gameType":"addition","score":1,"points":1}`))
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetStandings(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "multiplication", [2]int{150, 8}, [2]int{100, 5}, [2]int{80, 4})

	w := env.do(t, http.MethodGet, "/api/leaderboard?gameType=multiplication&userScore=5&userPoints=100", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var st leaderboard.Standing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, 3, st.UserPosition, "existing ties rank ahead of a hypothetical result")
	assert.Len(t, st.TopEntries, 3)

	n, err := env.store.GameStats(context.Background(), "multiplication")
	require.NoError(t, err)
	assert.Equal(t, 3, n.GamesPlayed, "standings must not write")

	w = env.do(t, http.MethodGet, "/api/leaderboard?userScore=5", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/leaderboard?gameType=addition&userScore=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStats(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "division", [2]int{10, 1}, [2]int{20, 2})

	w := env.do(t, http.MethodGet, "/api/stats/division", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"gameType":"division","gamesPlayed":2,"bestPoints":20,"avgPoints":"15"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/stats/modulo", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
