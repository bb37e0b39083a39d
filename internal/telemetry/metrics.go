// Package telemetry holds the process's metrics and logging adapters.
package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vovakirdan/math-arcade/internal/errors"
)

const namespace = "arcade"

// Metrics implements leaderboard.Observer and counts game sessions.
type Metrics struct {
	rankings        *prometheus.CounterVec
	rankingDuration *prometheus.HistogramVec
	sessions        *prometheus.CounterVec
	finalScore      *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		rankings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rankings_total",
			Help:      "Leaderboard operations by game type, operation and result code.",
		}, []string{"game_type", "op", "code"}),
		rankingDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_duration_seconds",
			Help:      "Leaderboard operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"game_type", "op"}),
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Game sessions by game type and phase.",
		}, []string{"game_type", "phase"}),
		finalScore: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_score",
			Help:      "Correct answers per finished session.",
			Buckets:   prometheus.LinearBuckets(0, 5, 12),
		}, []string{"game_type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) ObserveRanking(gameType, op string, d time.Duration, err error) {
	code := "ok"
	if err != nil {
		code = strconv.Itoa(errors.Convert(err).HTTPStatusCode())
	}

	m.rankings.WithLabelValues(gameType, op, code).Inc()
	m.rankingDuration.WithLabelValues(gameType, op).Observe(d.Seconds())
}

func (m *Metrics) SessionStarted(gameType string) {
	m.sessions.WithLabelValues(gameType, "started").Inc()
}

func (m *Metrics) SessionFinished(gameType string, score int) {
	m.sessions.WithLabelValues(gameType, "finished").Inc()
	m.finalScore.WithLabelValues(gameType).Observe(float64(score))
}

// GinMiddleware counts requests by matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
