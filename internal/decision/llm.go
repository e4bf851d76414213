package decision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/aaronzipp/among-llms/internal/models"
)

// DefaultRetries is how many replies are requested before a turn is missed
const DefaultRetries = 3

// ErrRetriesExhausted is returned when the model never produced a valid reply
var ErrRetriesExhausted = errors.New("model did not produce a valid reply")

// LLM asks a chat model for each decision
type LLM struct {
	model   model.BaseChatModel
	retries int
	logger  *slog.Logger
}

// NewLLM wraps a chat model. retries < 1 uses DefaultRetries.
func NewLLM(m model.BaseChatModel, retries int, logger *slog.Logger) *LLM {
	if retries < 1 {
		retries = DefaultRetries
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LLM{model: m, retries: retries, logger: logger}
}

// Decide sends the prompt to the model and parses the reply. A malformed
// reply is answered with the parse error as a system message and retried.
func (l *LLM) Decide(ctx context.Context, req Request) (*Decision, error) {
	messages := Messages(req)
	allowed := req.Remaining

	for attempt := 1; attempt <= l.retries; attempt++ {
		reply, err := l.model.Generate(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("generate reply for %s: %w", req.Participant, err)
		}
		if reply == nil || reply.Content == "" {
			l.logger.Warn("empty model reply", "participant", req.Participant, "attempt", attempt)
			continue
		}

		d, err := Parse(reply.Content)
		if err == nil {
			err = d.Validate(req.Participant, allowed)
		}
		if err == nil {
			return d, nil
		}

		l.logger.Warn("malformed model reply",
			"participant", req.Participant,
			"attempt", attempt,
			"error", err)
		messages = append(messages,
			&schema.Message{Role: schema.Assistant, Content: reply.Content},
			&schema.Message{Role: schema.System, Content: err.Error() + ". ENSURE YOU ADHERE TO THE EXPECTED OUTPUT SCHEMA"},
		)
	}
	return nil, fmt.Errorf("%s after %d attempts: %w", req.Participant, l.retries, ErrRetriesExhausted)
}

// Messages builds the chat transcript sent to the model: background rules,
// the participant's rolling context, then the per-turn instructions
func Messages(req Request) []*schema.Message {
	messages := make([]*schema.Message, 0, len(req.Context)+5)
	messages = append(messages, &schema.Message{Role: schema.System, Content: BackgroundPrompt(req)})
	for _, line := range req.Context {
		messages = append(messages, &schema.Message{Role: roleFor(line.Role), Content: line.Text})
	}
	messages = append(messages,
		&schema.Message{Role: schema.System, Content: InputPrompt(req)},
		&schema.Message{Role: schema.System, Content: HumanPresencePrompt()},
	)
	if terminated := TerminatedPrompt(req.Eliminated); terminated != "" {
		messages = append(messages, &schema.Message{Role: schema.System, Content: terminated})
	}
	messages = append(messages, &schema.Message{Role: schema.System, Content: OutputPrompt()})
	return messages
}

func roleFor(role models.ContextRole) schema.RoleType {
	switch role {
	case models.RoleOwn:
		return schema.Assistant
	case models.RoleSystem:
		return schema.System
	default:
		return schema.User
	}
}
