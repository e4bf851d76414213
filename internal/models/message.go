package models

import (
	"slices"
	"time"
)

// SystemSender is the sender of announcements written by the game itself
const SystemSender = "System"

// Suspicion is an accusation attached to a message
type Suspicion struct {
	Target     string `json:"target"`
	Confidence int    `json:"confidence"` // 0-100
	Reason     string `json:"reason"`
}

// AuditRecord is one entry of a message's edit/delete trail
type AuditRecord struct {
	At           time.Time `json:"at"`
	PreviousBody string    `json:"previous_body"`
	ByHuman      bool      `json:"by_human"`
	Deleted      bool      `json:"deleted"`
}

// Message is a single chat message. ID and Sender never change once stored.
type Message struct {
	ID           string        `json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	Body         string        `json:"body"`
	Sender       string        `json:"sender"`
	Recipient    string        `json:"recipient,omitempty"` // empty for public messages
	Intent       string        `json:"intent,omitempty"`
	SentByHuman  bool          `json:"sent_by_human"`
	ReplyTo      string        `json:"reply_to,omitempty"`
	Suspicion    *Suspicion    `json:"suspicion,omitempty"`
	Announcement bool          `json:"announcement,omitempty"`
	Edited       bool          `json:"edited"`
	Deleted      bool          `json:"deleted"`
	Audit        []AuditRecord `json:"audit,omitempty"`
}

// IsDirect reports whether the message has a single recipient
func (m *Message) IsDirect() bool {
	return m.Recipient != ""
}

// VisibleTo reports whether the participant is entitled to see the message
func (m *Message) VisibleTo(participantID string) bool {
	if !m.IsDirect() {
		return true
	}
	return m.Sender == participantID || m.Recipient == participantID
}

// LastAudit returns the most recent audit record, if any
func (m *Message) LastAudit() (AuditRecord, bool) {
	if len(m.Audit) == 0 {
		return AuditRecord{}, false
	}
	return m.Audit[len(m.Audit)-1], true
}

// Clone returns a deep copy of the message
func (m *Message) Clone() *Message {
	c := *m
	if m.Suspicion != nil {
		s := *m.Suspicion
		c.Suspicion = &s
	}
	c.Audit = slices.Clone(m.Audit)
	return &c
}
