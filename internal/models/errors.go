package models

import "errors"

var (
	// ErrDuplicateID is returned when an identifier is registered twice
	ErrDuplicateID = errors.New("duplicate identifier")

	// ErrNotFound is returned when a message or participant does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyRemoved is returned when removing a participant that was already eliminated
	ErrAlreadyRemoved = errors.New("participant already removed")

	// ErrHumanAssigned is returned when the human binding is attempted twice
	ErrHumanAssigned = errors.New("human participant already assigned")

	// ErrMessageDeleted is returned when modifying a message that was deleted
	ErrMessageDeleted = errors.New("message was deleted")

	// ErrNotActive is returned when ending a vote that is not in progress
	ErrNotActive = errors.New("no vote in progress")

	// ErrGameEnded is returned for actions attempted after the game ended
	ErrGameEnded = errors.New("game has ended")

	// ErrNotStarted is returned when an operation requires running turns
	ErrNotStarted = errors.New("turns have not started")

	// ErrNoHuman is returned when turns are started before the human is assigned
	ErrNoHuman = errors.New("human participant not assigned")

	// ErrInvalidMessage is returned for a message with no body or a bad recipient
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInPlay is returned when a game setting is changed after turns started
	ErrInPlay = errors.New("game is already in play")

	// ErrEmptyText is returned when a scenario or persona is set to blank text
	ErrEmptyText = errors.New("text is empty")

	// ErrNotEligible is returned when a participant is not allowed to take part in an action
	ErrNotEligible = errors.New("participant not eligible")
)
