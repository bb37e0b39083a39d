package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/math-arcade/internal/auth"
	"github.com/vovakirdan/math-arcade/internal/notify"
	"github.com/vovakirdan/math-arcade/internal/server"
)

func testConfig(t *testing.T) server.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c := server.DefaultConfig()
	c.SSH.Enabled = false
	c.Storage.Path = filepath.Join(t.TempDir(), "scores.db")
	c.Auth.Secret = "test-secret"
	c.Log.Level = "error"
	return c
}

func submit(t *testing.T, h http.Handler, secret, user string, body string) *httptest.ResponseRecorder {
	t.Helper()

	tokens, err := auth.NewTokens(secret, time.Hour)
	require.NoError(t, err)
	token, err := tokens.Issue(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/leaderboard", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestInit_SQLite(t *testing.T) {
	s, err := server.Init(testConfig(t), prometheus.NewRegistry())
	require.NoError(t, err)
	defer s.Shutdown()

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = submit(t, s.Handler(), "test-secret", "ada", `{"gameType":"addition","score":3,"points":40}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInit_Errors(t *testing.T) {
	tests := map[string]func(c *server.Config){
		"unknown driver": func(c *server.Config) { c.Storage.Driver = "mongo" },
		"missing secret": func(c *server.Config) { c.Auth.Secret = "" },
		"redis down": func(c *server.Config) {
			c.Storage.Driver = server.DriverRedis
			c.Redis.Addrs = []string{"127.0.0.1:1"}
		},
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := testConfig(t)
			mutate(&c)

			_, err := server.Init(c, prometheus.NewRegistry())
			assert.Error(t, err)
		})
	}
}

func TestInit_RedisPublishesRankings(t *testing.T) {
	mr := miniredis.RunT(t)

	c := testConfig(t)
	c.Storage.Driver = server.DriverRedis
	c.Redis.Addrs = []string{mr.Addr()}
	c.Pubsub.Enabled = true

	s, err := server.Init(c, prometheus.NewRegistry())
	require.NoError(t, err)
	defer s.Shutdown()

	r := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := r.Subscribe(ctx, notify.Channel("arcade", "division"))
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	w := submit(t, s.Handler(), "test-secret", "ada", `{"gameType":"division","score":7,"points":90}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var n notify.Notification
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &n))
	assert.Equal(t, "entry.ranked", n.Event)
}
