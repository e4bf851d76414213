package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aaronzipp/among-llms/internal/events"
	"github.com/aaronzipp/among-llms/internal/models"
	"github.com/aaronzipp/among-llms/internal/render"
)

// SendRequest describes a message to post
type SendRequest struct {
	From      string
	To        string // empty for public
	Body      string
	Intent    string
	ReplyTo   string
	Suspicion *models.Suspicion
	ByHuman   bool // the human wrote it, possibly under an agent's name
}

// SendMessage stores a message and delivers it to the entitled windows. A
// message from a participant that is no longer in play is dropped and ""
// is returned with a nil error.
func (s *Session) SendMessage(req SendRequest) (id string, err error) {
	s.do(func(out *outbox) {
		id, err = s.sendLocked(req, out)
	})
	return id, err
}

// must be called with mu held
func (s *Session) sendLocked(req SendRequest, out *outbox) (string, error) {
	s.mustBeCreated("SendMessage")
	if s.ended {
		return "", fmt.Errorf("send message: %w", models.ErrGameEnded)
	}

	sender, err := s.roster.Get(req.From)
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	if !s.roster.IsRemaining(req.From) {
		s.logger.Warn("dropping message from eliminated participant", "participant", req.From)
		return "", nil
	}
	if strings.TrimSpace(req.Body) == "" {
		return "", fmt.Errorf("send message: empty body: %w", models.ErrInvalidMessage)
	}
	if req.To != "" && (req.To == req.From || !s.roster.IsRemaining(req.To)) {
		return "", fmt.Errorf("send message: recipient %q: %w", req.To, models.ErrInvalidMessage)
	}

	msg := &models.Message{
		ID:          s.ids.Next(),
		CreatedAt:   s.clock.Now(),
		Body:        req.Body,
		Sender:      req.From,
		Recipient:   req.To,
		Intent:      req.Intent,
		SentByHuman: req.ByHuman,
		ReplyTo:     req.ReplyTo,
		Suspicion:   req.Suspicion,
	}
	if err := s.history.Add(msg); err != nil {
		if errors.Is(err, models.ErrDuplicateID) {
			panic(fmt.Sprintf("session: generated %v", err))
		}
		return "", fmt.Errorf("send message: %w", err)
	}

	sender.RecordAuthored(msg.ID)
	if msg.IsDirect() {
		recipient, err := s.roster.Get(msg.Recipient)
		if err != nil {
			panic(fmt.Sprintf("session: recipient vanished: %v", err))
		}
		sender.RecordDirect(msg.ID, msg.Recipient, false)
		recipient.RecordDirect(msg.ID, msg.Sender, true)
		s.pushLocked(msg.Sender, models.RoleOwn, msg.ID, "")
		s.pushLocked(msg.Recipient, models.RoleInput, msg.ID, "")
	} else {
		for _, pid := range s.roster.Remaining() {
			role := models.RoleInput
			if pid == msg.Sender {
				role = models.RoleOwn
			}
			s.pushLocked(pid, role, msg.ID, "")
		}
	}

	if req.ByHuman && msg.Sender != s.roster.Human() {
		s.pushLocked(msg.Sender, models.RoleSystem, "", render.SentByHuman(msg.Body))
	}
	if msg.Suspicion != nil {
		s.pushLocked(msg.Sender, models.RoleSystem, "", render.Suspicion(msg.Suspicion))
	}

	s.logger.Debug("message sent", "message", msg.ID, "sender", msg.Sender, "recipient", msg.Recipient, "by_human", req.ByHuman)
	out.add(events.NewMessage{MessageID: msg.ID, Sender: msg.Sender, Recipient: msg.Recipient})
	return msg.ID, nil
}

// EditMessage replaces a message's body. When the human edits an agent's
// message the author is told about it.
func (s *Session) EditMessage(id, body string, byHuman bool) (msg *models.Message, err error) {
	s.do(func(out *outbox) {
		msg, err = s.modifyLocked("EditMessage", id, byHuman, out, func() (*models.Message, error) {
			if strings.TrimSpace(body) == "" {
				return nil, fmt.Errorf("edit message: empty body: %w", models.ErrInvalidMessage)
			}
			return s.history.Edit(id, body, byHuman)
		})
	})
	return msg, err
}

// DeleteMessage marks a message deleted. When the human deletes an agent's
// message the author is told about it.
func (s *Session) DeleteMessage(id string, byHuman bool) (msg *models.Message, err error) {
	s.do(func(out *outbox) {
		msg, err = s.modifyLocked("DeleteMessage", id, byHuman, out, func() (*models.Message, error) {
			return s.history.Delete(id, byHuman)
		})
	})
	return msg, err
}

// must be called with mu held
func (s *Session) modifyLocked(op, id string, byHuman bool, out *outbox, modify func() (*models.Message, error)) (*models.Message, error) {
	s.mustBeCreated(op)
	if s.ended {
		return nil, models.ErrGameEnded
	}
	msg, err := modify()
	if err != nil {
		return nil, err
	}

	// the modifier is the human unless the author changed its own message
	if byHuman && !msg.Announcement && msg.Sender != s.roster.Human() {
		s.pushLocked(msg.Sender, models.RoleSystem, "", render.Tampered(msg))
	}
	out.add(events.MessageModified{MessageID: msg.ID, Deleted: msg.Deleted, ByHuman: byHuman})
	return msg, nil
}

// announceLocked stores a System message and pushes it to every remaining
// participant's window. Must be called with mu held.
func (s *Session) announceLocked(text string, out *outbox) {
	msg := &models.Message{
		ID:           s.ids.Next(),
		CreatedAt:    s.clock.Now(),
		Body:         text,
		Sender:       models.SystemSender,
		Announcement: true,
	}
	if err := s.history.Add(msg); err != nil {
		panic(fmt.Sprintf("session: announcement: %v", err))
	}
	for _, pid := range s.roster.Remaining() {
		s.pushLocked(pid, models.RoleSystem, msg.ID, "")
	}
	out.add(events.NewMessage{MessageID: msg.ID, Sender: msg.Sender})
}

// must be called with mu held
func (s *Session) pushLocked(pid string, role models.ContextRole, msgID, text string) {
	p, err := s.roster.Get(pid)
	if err != nil {
		return
	}
	p.PushContext(models.ContextEntry{Role: role, MessageID: msgID, Text: text})
}
