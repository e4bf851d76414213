package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aaronzipp/among-llms/internal/models"
	"github.com/aaronzipp/among-llms/internal/session"
)

type sendMessageRequest struct {
	As      string `json:"as"`
	To      string `json:"to"`
	Body    string `json:"body"`
	ReplyTo string `json:"reply_to"`
}

type editMessageRequest struct {
	Body string `json:"body"`
}

type startVoteRequest struct {
	As string `json:"as"`
}

type castVoteRequest struct {
	As     string `json:"as"`
	Target string `json:"target"`
}

// ListMessages returns all messages, or those visible to ?viewer=
// GET /api/games/:id/messages
func (ctx *Context) ListMessages(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}

	viewer := c.QueryParam("viewer")
	if viewer == "" {
		return c.JSON(http.StatusOK, map[string]any{"messages": sess.Messages()})
	}
	if _, err := sess.Participant(viewer); err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": sess.VisibleTo(viewer)})
}

// SendMessage posts a message written by the human, as themselves or as
// any participant still in play
// POST /api/games/:id/messages
func (ctx *Context) SendMessage(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	from := actor(sess, req.As)
	id, err := sess.SendMessage(session.SendRequest{
		From:    from,
		To:      req.To,
		Body:    req.Body,
		ReplyTo: req.ReplyTo,
		ByHuman: true,
	})
	if err != nil {
		return ctx.fail(c, err)
	}
	if id == "" {
		return ctx.fail(c, fmt.Errorf("%s is no longer in play: %w", from, models.ErrNotEligible))
	}

	msg, err := sess.Message(id)
	if err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// EditMessage replaces a message body
// PATCH /api/games/:id/messages/:msg
func (ctx *Context) EditMessage(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	var req editMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Body) == "" {
		return ctx.fail(c, fmt.Errorf("edit message: empty body: %w", models.ErrInvalidMessage))
	}

	msg, err := sess.EditMessage(c.Param("msg"), req.Body, true)
	if err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}

// DeleteMessage marks a message deleted
// DELETE /api/games/:id/messages/:msg
func (ctx *Context) DeleteMessage(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	msg, err := sess.DeleteMessage(c.Param("msg"), true)
	if err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}

// StartVote opens a vote on behalf of the human
// POST /api/games/:id/votes/start
func (ctx *Context) StartVote(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	var req startVoteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	initiator := actor(sess, req.As)
	if !sess.StartVote(initiator, true) {
		return ctx.fail(c, fmt.Errorf("vote not started by %s: %w", initiator, models.ErrNotEligible))
	}
	return c.JSON(http.StatusOK, sess.VoteStatus())
}

// CastVote records a ballot on behalf of the human
// POST /api/games/:id/votes
func (ctx *Context) CastVote(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	var req castVoteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Target == "" {
		return badRequest(c, "target is required")
	}

	voter := actor(sess, req.As)
	if !sess.Vote(voter, req.Target, true) {
		return ctx.fail(c, fmt.Errorf("ballot from %s not accepted: %w", voter, models.ErrNotEligible))
	}
	return c.JSON(http.StatusOK, sess.VoteStatus())
}

// EndVote closes the vote in progress and applies its outcome
// POST /api/games/:id/votes/end
func (ctx *Context) EndVote(c echo.Context) error {
	sess, err := ctx.getSession(c)
	if err != nil {
		return ctx.fail(c, err)
	}
	outcome, err := sess.EndVote()
	if err != nil {
		return ctx.fail(c, err)
	}
	return c.JSON(http.StatusOK, outcome)
}
