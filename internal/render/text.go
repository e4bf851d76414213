// Package render formats messages and game notices as plain text, both for
// the agents' context windows and for exported transcripts.
package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/aaronzipp/among-llms/internal/models"
)

const importantPrefix = "[IMPORTANT] "

// Message formats a message the way participants see it in their context:
// "[sender] body" for public messages and "[sender -> recipient] body" for
// direct ones
func Message(m *models.Message) string {
	if m.Announcement {
		return Announcement(m.Body)
	}
	var b strings.Builder
	writeHeader(&b, m)
	b.WriteString(" ")
	if m.Deleted {
		b.WriteString("(message deleted)")
	} else {
		b.WriteString(m.Body)
	}
	return b.String()
}

func writeHeader(b *strings.Builder, m *models.Message) {
	b.WriteString("[")
	b.WriteString(m.Sender)
	if m.IsDirect() {
		b.WriteString(" -> ")
		b.WriteString(m.Recipient)
	}
	b.WriteString("]")
}

// Announcement formats a notice from the game to every participant
func Announcement(text string) string {
	return importantPrefix + text
}

// Suspicion formats the notice pushed to an accuser's own context
func Suspicion(s *models.Suspicion) string {
	var b strings.Builder
	b.WriteString("Current suspect: ")
	b.WriteString(s.Target)
	b.WriteString("; Confidence: ")
	b.WriteString(strconv.Itoa(s.Confidence))
	b.WriteString("; Reason: ")
	b.WriteString(s.Reason)
	b.WriteString(".")
	return b.String()
}

// SentByHuman tells an agent the human posted body under its name
func SentByHuman(body string) string {
	return importantPrefix + "The human has SENT the following message via you -- '" + body + "'"
}

// VoteStartedByHuman tells an agent the human opened a vote under its name
func VoteStartedByHuman() string {
	return importantPrefix + "The human has started the vote as you"
}

// VotedByHuman tells an agent the human cast its ballot
func VotedByHuman(target string) string {
	return importantPrefix + "The human has voted for <" + target + "> as you"
}

// Tampered tells an author the human edited or deleted one of its messages.
// m must carry at least one audit record.
func Tampered(m *models.Message) string {
	rec, _ := m.LastAudit()
	var b strings.Builder
	b.WriteString(importantPrefix)
	if rec.Deleted {
		b.WriteString("The human has DELETED your previous message -- '")
		b.WriteString(rec.PreviousBody)
		b.WriteString("'")
		return b.String()
	}
	b.WriteString("The human has EDITED your previous message -- '")
	b.WriteString(rec.PreviousBody)
	b.WriteString("' to '")
	b.WriteString(m.Body)
	b.WriteString("'")
	return b.String()
}

// VoteStarted is the announcement made when a vote opens
func VoteStarted(initiator string, endsAt time.Time) string {
	return "A vote has been started by " + initiator +
		". It ends at " + endsAt.UTC().Format(time.TimeOnly) + " UTC"
}
