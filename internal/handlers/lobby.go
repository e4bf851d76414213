package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aaronzipp/among-llms/internal/models"
)

type createGameRequest struct {
	Human string `json:"human"`
}

type gameResponse struct {
	ID string `json:"id"`
	models.GameSnapshot
}

// CreateGame generates a new game and binds the human to a participant
// POST /api/games
func (ctx *Context) CreateGame(c echo.Context) error {
	var req createGameRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sess := ctx.NewSession()
	sess.NewGame()

	human := req.Human
	var err error
	if human == "" {
		human, err = sess.AssignRandomHuman()
	} else {
		err = sess.AssignHuman(human)
	}
	if err != nil {
		sess.Shutdown()
		return ctx.fail(c, err)
	}

	id := ctx.Sessions.Add(sess)
	ctx.archiveOnEnd(id, sess)
	ctx.logger().Info("game created", "game", id, "human", human)
	return c.JSON(http.StatusCreated, gameResponse{ID: id, GameSnapshot: sess.Snapshot()})
}

// ListGames returns the ids of live games
// GET /api/games
func (ctx *Context) ListGames(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"games": ctx.Sessions.IDs()})
}

// GetGame returns a snapshot of a game
// GET /api/games/:id
func (ctx *Context) GetGame(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusOK, gameResponse{ID: c.Param("id"), GameSnapshot: sess.Snapshot()})
}

// DeleteGame ends a game, stops its turn loops and forgets it
// DELETE /api/games/:id
func (ctx *Context) DeleteGame(c echo.Context) error {
	id := c.Param("id")
	sess, exists := ctx.Sessions.Delete(id)
	if !exists {
		return ctx.fail(c, models.ErrNotFound)
	}
	sess.Shutdown()
	ctx.logger().Info("game deleted", "game", id)
	return c.NoContent(http.StatusNoContent)
}

type textRequest struct {
	Text string `json:"text"`
}

// UpdateScenario replaces the scenario before turns start
// PATCH /api/games/:id/scenario
func (ctx *Context) UpdateScenario(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := sess.UpdateScenario(req.Text); err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusOK, gameResponse{ID: c.Param("id"), GameSnapshot: sess.Snapshot()})
}

// GetParticipant returns a participant's persona and bookkeeping
// GET /api/games/:id/participants/:pid
func (ctx *Context) GetParticipant(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	view, err := sess.Participant(c.Param("pid"))
	if err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// UpdatePersona replaces a participant's persona before turns start
// PATCH /api/games/:id/participants/:pid
func (ctx *Context) UpdatePersona(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	pid := c.Param("pid")
	if err := sess.UpdatePersona(pid, req.Text); err != nil {
		return ctx.fail(c, err)
	}
	view, err := sess.Participant(pid)
	if err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}
