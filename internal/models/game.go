package models

import "time"

// VoteSnapshot describes the vote in progress, if any
type VoteSnapshot struct {
	Active    bool      `json:"active"`
	Initiator string    `json:"initiator,omitempty"`
	Ballots   int       `json:"ballots"`
	StartedAt time.Time `json:"started_at,omitzero"`
	EndsAt    time.Time `json:"ends_at,omitzero"`
}

// GameSnapshot is a consistent read of a game session's state
type GameSnapshot struct {
	Status    GameStatus    `json:"status"`
	Scenario  string        `json:"scenario"`
	Human     string        `json:"human"`
	All       []string      `json:"all"`
	Remaining []string      `json:"remaining"`
	Ended     bool          `json:"ended"`
	Won       bool          `json:"won"`
	StartedAt time.Time     `json:"started_at,omitzero"`
	Elapsed   time.Duration `json:"elapsed"`
	Vote      VoteSnapshot  `json:"vote"`
	Messages  int           `json:"messages"`
}
