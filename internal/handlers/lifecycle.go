package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// StartTurns starts the agents' turn loops
// POST /api/games/:id/start
func (ctx *Context) StartTurns(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	// Turn loops must outlive this request
	if err := sess.StartTurns(ctx.base()); err != nil {
		return ctx.fail(c, err)
	}
	ctx.logger().Info("turns started", "game", c.Param("id"))
	return c.JSON(http.StatusOK, gameResponse{ID: c.Param("id"), GameSnapshot: sess.Snapshot()})
}

// PauseTurns suspends agent turns
// POST /api/games/:id/pause
func (ctx *Context) PauseTurns(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	if err := sess.Pause(); err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusOK, gameResponse{ID: c.Param("id"), GameSnapshot: sess.Snapshot()})
}

// ResumeTurns continues agent turns
// POST /api/games/:id/resume
func (ctx *Context) ResumeTurns(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	if err := sess.Resume(); err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusOK, gameResponse{ID: c.Param("id"), GameSnapshot: sess.Snapshot()})
}
