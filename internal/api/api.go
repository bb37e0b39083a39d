// Package api exposes the leaderboard over HTTP and streams browser play
// sessions over WebSocket.
package api

import (
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/math-arcade/internal/auth"
	"github.com/vovakirdan/math-arcade/internal/config"
	"github.com/vovakirdan/math-arcade/internal/errors"
	"github.com/vovakirdan/math-arcade/internal/leaderboard"
)

// SessionObserver is told about every play session the API runs.
type SessionObserver interface {
	SessionStarted(gameType string)
	SessionFinished(gameType string, score int)
}

type Config struct {
	Leaderboard *leaderboard.Service
	Tokens      *auth.Tokens
	Math        config.MathConfig
	Sessions    SessionObserver
	Logger      *log.Logger
}

type API struct {
	ls       *leaderboard.Service
	tokens   *auth.Tokens
	math     config.MathConfig
	sessions SessionObserver
	logger   *log.Logger
}

func New(c Config) *API {
	a := &API{
		ls:       c.Leaderboard,
		tokens:   c.Tokens,
		math:     c.Math,
		sessions: c.Sessions,
		logger:   c.Logger,
	}

	if len(a.math.Bands) == 0 {
		a.math = config.DefaultMathConfig()
	}
	if a.sessions == nil {
		a.sessions = nopSessions{}
	}
	if a.logger == nil {
		a.logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "arcade-http"})
	}

	return a
}

// Register mounts the routes on r.
func (a *API) Register(r gin.IRouter) {
	r.GET("/health", a.Health)

	g := r.Group("/api", auth.Middleware(a.tokens))
	g.POST("/leaderboard", a.SubmitEntry)
	g.GET("/leaderboard", a.GetStandings)
	g.GET("/stats/:gameType", a.GetStats)
	g.GET("/play/:gameType", a.Play)
}

func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *API) writeError(c *gin.Context, err error) {
	e := errors.Convert(err)
	if e.Code == errors.CodeInternal || e.Code == errors.CodeUnavailable {
		a.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(e.HTTPStatusCode(), e)
}

type nopSessions struct{}

func (nopSessions) SessionStarted(string)       {}
func (nopSessions) SessionFinished(string, int) {}
