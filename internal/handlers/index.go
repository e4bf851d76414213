// Package handlers exposes game sessions over HTTP for the human player.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/aaronzipp/among-llms/internal/archive"
	"github.com/aaronzipp/among-llms/internal/session"
	"github.com/aaronzipp/among-llms/internal/store"
)

// Archive stores transcripts of finished games
type Archive interface {
	Save(ctx context.Context, t archive.Transcript) (string, error)
	Get(ctx context.Context, id string) (*archive.Transcript, error)
	List(ctx context.Context, limit int) ([]archive.Transcript, error)
}

// Context holds shared dependencies for handlers
type Context struct {
	Sessions *store.SessionStore
	Archive  Archive // optional
	Logger   *slog.Logger

	// NewSession builds an idle session with its provider and generator wired
	NewSession func() *session.Session

	// Base outlives requests. Turn loops and event streams end when it is
	// cancelled.
	Base context.Context

	archiving sync.WaitGroup
}

// RegisterRoutes registers routes with the echo server
func (ctx *Context) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	api.POST("/games", ctx.CreateGame)
	api.GET("/games", ctx.ListGames)
	api.GET("/games/:id", ctx.GetGame)
	api.DELETE("/games/:id", ctx.DeleteGame)
	api.PATCH("/games/:id/scenario", ctx.UpdateScenario)
	api.GET("/games/:id/participants/:pid", ctx.GetParticipant)
	api.PATCH("/games/:id/participants/:pid", ctx.UpdatePersona)

	api.POST("/games/:id/start", ctx.StartTurns)
	api.POST("/games/:id/pause", ctx.PauseTurns)
	api.POST("/games/:id/resume", ctx.ResumeTurns)

	api.GET("/games/:id/messages", ctx.ListMessages)
	api.POST("/games/:id/messages", ctx.SendMessage)
	api.PATCH("/games/:id/messages/:msg", ctx.EditMessage)
	api.DELETE("/games/:id/messages/:msg", ctx.DeleteMessage)

	api.POST("/games/:id/votes/start", ctx.StartVote)
	api.POST("/games/:id/votes", ctx.CastVote)
	api.POST("/games/:id/votes/end", ctx.EndVote)

	api.GET("/games/:id/export", ctx.Export)
	api.GET("/games/:id/events", ctx.Events)

	api.GET("/archive", ctx.ListArchive)
	api.GET("/archive/:id", ctx.GetArchive)

	api.GET("/health", ctx.Health)
}

// Health returns health status
func (ctx *Context) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "healthy",
		"sessions": len(ctx.Sessions.IDs()),
	})
}

// Wait blocks until pending archive writes finish
func (ctx *Context) Wait() {
	ctx.archiving.Wait()
}

func (ctx *Context) base() context.Context {
	if ctx.Base == nil {
		return context.Background()
	}
	return ctx.Base
}

func (ctx *Context) logger() *slog.Logger {
	if ctx.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return ctx.Logger
}
