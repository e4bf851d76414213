package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aaronzipp/among-llms/internal/archive"
	"github.com/aaronzipp/among-llms/internal/events"
	"github.com/aaronzipp/among-llms/internal/session"
)

const archiveTimeout = 5 * time.Second

// Export returns the plain-text transcript
// GET /api/games/:id/export
func (ctx *Context) Export(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	return c.String(http.StatusOK, strings.Join(sess.Export(), "\n")+"\n")
}

// ListArchive returns archived transcripts, newest first
// GET /api/archive
func (ctx *Context) ListArchive(c echo.Context) error {
	if ctx.Archive == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "archive disabled"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := ctx.Archive.List(c.Request().Context(), limit)
	if err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"transcripts": list})
}

// GetArchive returns one archived transcript
// GET /api/archive/:id
func (ctx *Context) GetArchive(c echo.Context) error {
	if ctx.Archive == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "archive disabled"})
	}
	t, err := ctx.Archive.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// archiveOnEnd saves the session's transcript once its game ends. The write
// runs on its own goroutine so the publisher is never held up by the
// database.
func (ctx *Context) archiveOnEnd(id string, sess *session.Session) {
	if ctx.Archive == nil {
		return
	}
	var unsubscribe func()
	unsubscribe = events.Subscribe(sess.Bus(), func(e events.GameEnded) {
		ctx.archiving.Go(func() {
			unsubscribe()
			ctx.save(id, sess, e.Won)
		})
	})
}

func (ctx *Context) save(id string, sess *session.Session, won bool) {
	c, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	tid, err := ctx.Archive.Save(c, archive.Transcript{
		SessionID: id,
		Scenario:  sess.Scenario(),
		Human:     sess.Human(),
		Won:       won,
		Lines:     sess.Export(),
	})
	if err != nil {
		ctx.logger().Error("archive transcript", "game", id, "err", err)
		return
	}
	ctx.logger().Info("transcript archived", "game", id, "transcript", tid)
}
