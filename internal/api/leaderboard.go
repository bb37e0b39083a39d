package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/math-arcade/internal/errors"
	"github.com/vovakirdan/math-arcade/internal/leaderboard"
)

type SubmitEntryRequest struct {
	GameType string `json:"gameType" binding:"required"`
	Score    *int   `json:"score" binding:"required"`
	Points   *int   `json:"points" binding:"required"`
}

// SubmitEntry records a finished game for the authenticated user and
// returns where it ranks.
func (a *API) SubmitEntry(c *gin.Context) {
	var req SubmitEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.writeError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("invalid request body"), errors.WithCause(err)))
		return
	}

	st, err := a.ls.Submit(c.Request.Context(), leaderboard.SubmitRequest{
		GameType: req.GameType,
		Score:    *req.Score,
		Points:   *req.Points,
	})
	if err != nil {
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}

type GetStandingsRequest struct {
	GameType   string `form:"gameType" binding:"required"`
	UserScore  int    `form:"userScore"`
	UserPoints int    `form:"userPoints"`
}

// GetStandings ranks a hypothetical result without saving it.
func (a *API) GetStandings(c *gin.Context) {
	var req GetStandingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		a.writeError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("invalid query"), errors.WithCause(err)))
		return
	}

	st, err := a.ls.Standings(c.Request.Context(), leaderboard.StandingsRequest{
		GameType: req.GameType,
		Score:    req.UserScore,
		Points:   req.UserPoints,
	})
	if err != nil {
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}

func (a *API) GetStats(c *gin.Context) {
	st, err := a.ls.Stats(c.Request.Context(), leaderboard.StatsRequest{
		GameType: c.Param("gameType"),
	})
	if err != nil {
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}
