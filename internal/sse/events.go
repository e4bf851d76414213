package sse

import "time"

// SSE event names. Bus events use their kind name.
const (
	EventNewMessage        = "new-message"
	EventMessageModified   = "message-modified"
	EventVoteStarted       = "vote-started"
	EventBallotCast        = "ballot-cast"
	EventVoteEnded         = "vote-ended"
	EventAgentsListChanged = "agents-list-changed"
	EventTurnMissed        = "turn-missed"
	EventGameEnded         = "game-ended"

	// EventSnapshot carries the session snapshot sent on connect
	EventSnapshot = "snapshot"
)

const (
	// BufferSize is the capacity of each client channel
	BufferSize = 64
	// SendTimeout bounds how long a slow client can hold up a publisher
	SendTimeout = 250 * time.Millisecond
)
