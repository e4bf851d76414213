package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aaronzipp/among-llms/internal/models"
	"github.com/aaronzipp/among-llms/internal/scheduler"
	"github.com/aaronzipp/among-llms/internal/session"
)

// getSession looks up the session named by the :id path parameter
func (ctx *Context) getSession(c echo.Context) (*session.Session, error) {
	id := c.Param("id")
	sess, exists := ctx.Sessions.Get(id)
	if !exists {
		return nil, fmt.Errorf("game %s: %w", id, models.ErrNotFound)
	}
	return sess, nil
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidMessage),
		errors.Is(err, models.ErrEmptyText),
		errors.Is(err, models.ErrDuplicateID):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrGameEnded),
		errors.Is(err, models.ErrMessageDeleted),
		errors.Is(err, models.ErrNotActive),
		errors.Is(err, models.ErrNotStarted),
		errors.Is(err, models.ErrNoHuman),
		errors.Is(err, models.ErrHumanAssigned),
		errors.Is(err, models.ErrAlreadyRemoved),
		errors.Is(err, models.ErrNotEligible),
		errors.Is(err, models.ErrInPlay),
		errors.Is(err, scheduler.ErrAlreadyStarted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error body
func (ctx *Context) fail(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		ctx.logger().Error("request failed", "path", c.Path(), "err", err)
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

// actor returns the participant the human acts as, defaulting to their own
func actor(sess *session.Session, as string) string {
	if as == "" {
		return sess.Human()
	}
	return as
}
