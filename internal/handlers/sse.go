package handlers

import (
	"encoding/json"

	"github.com/labstack/echo/v4"

	"github.com/aaronzipp/among-llms/internal/sse"
)

// Events streams the game's events as server-sent events. The first event
// is a snapshot of the game.
// GET /api/games/:id/events
func (ctx *Context) Events(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	viewer := c.QueryParam("viewer")

	// Subscribe before the snapshot so nothing published in between is lost
	hub := sse.NewHub(sess.Bus(), ctx.logger())
	defer hub.Close()
	client := hub.AddClient(viewer)
	defer hub.RemoveClient(client)

	w := c.Response()
	sse.SetHeaders(w)

	snapshot, err := json.Marshal(gameResponse{ID: c.Param("id"), GameSnapshot: sess.Snapshot()})
	if err != nil {
		return err
	}
	if err := sse.Write(w, sse.Message{Event: sse.EventSnapshot, Data: string(snapshot)}); err != nil {
		return nil
	}
	ctx.logger().Debug("event stream opened", "game", c.Param("id"), "viewer", viewer)

	// Listen for updates
	reqCtx := c.Request().Context()
	for {
		select {
		case <-reqCtx.Done():
			ctx.logger().Debug("event stream closed", "game", c.Param("id"), "viewer", viewer)
			return nil
		case <-ctx.base().Done():
			return nil
		case <-hub.Done():
			return nil
		case msg := <-client:
			if err := sse.Write(w, msg); err != nil {
				return nil
			}
		}
	}
}
