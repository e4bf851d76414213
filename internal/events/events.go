// Package events is the typed notification bus between a game session and
// its observers (UI streams, archivers, tests).
package events

import (
	"time"

	"github.com/aaronzipp/among-llms/internal/game"
)

// Kind identifies an event variant
type Kind int

const (
	KindNewMessage Kind = iota
	KindMessageModified
	KindVoteStarted
	KindBallotCast
	KindVoteEnded
	KindAgentsListChanged
	KindTurnMissed
	KindGameEnded
)

var kindNames = [...]string{
	KindNewMessage:        "new-message",
	KindMessageModified:   "message-modified",
	KindVoteStarted:       "vote-started",
	KindBallotCast:        "ballot-cast",
	KindVoteEnded:         "vote-ended",
	KindAgentsListChanged: "agents-list-changed",
	KindTurnMissed:        "turn-missed",
	KindGameEnded:         "game-ended",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Event is implemented only by the variants in this package
type Event interface {
	Kind() Kind
	sealed()
}

// NewMessage is published after a message was stored and delivered
type NewMessage struct {
	MessageID string `json:"message_id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient,omitempty"`
}

// MessageModified is published after an edit or delete
type MessageModified struct {
	MessageID string `json:"message_id"`
	Deleted   bool   `json:"deleted"`
	ByHuman   bool   `json:"by_human"`
}

type VoteStarted struct {
	Initiator string    `json:"initiator"`
	ByHuman   bool      `json:"by_human"`
	EndsAt    time.Time `json:"ends_at"`
}

type BallotCast struct {
	Voter   string `json:"voter"`
	Target  string `json:"target"`
	ByHuman bool   `json:"by_human"`
}

type VoteEnded struct {
	Outcome game.Outcome `json:"outcome"`
}

// AgentsListChanged is published when the remaining set shrinks
type AgentsListChanged struct {
	Remaining []string `json:"remaining"`
}

// TurnMissed is published when an agent's decision could not be obtained
type TurnMissed struct {
	Participant string `json:"participant"`
	Reason      string `json:"reason"`
}

// GameEnded is published exactly once per game
type GameEnded struct {
	Won bool `json:"won"`
}

func (NewMessage) Kind() Kind        { return KindNewMessage }
func (MessageModified) Kind() Kind   { return KindMessageModified }
func (VoteStarted) Kind() Kind       { return KindVoteStarted }
func (BallotCast) Kind() Kind        { return KindBallotCast }
func (VoteEnded) Kind() Kind         { return KindVoteEnded }
func (AgentsListChanged) Kind() Kind { return KindAgentsListChanged }
func (TurnMissed) Kind() Kind        { return KindTurnMissed }
func (GameEnded) Kind() Kind         { return KindGameEnded }

func (NewMessage) sealed()        {}
func (MessageModified) sealed()   {}
func (VoteStarted) sealed()       {}
func (BallotCast) sealed()        {}
func (VoteEnded) sealed()         {}
func (AgentsListChanged) sealed() {}
func (TurnMissed) sealed()        {}
func (GameEnded) sealed()         {}
