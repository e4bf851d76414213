package game

import "time"

const (
	// MinAgents is the minimum number of participants in a chatroom
	MinAgents = 3

	// DefaultAgentCount is the number of participants generated for a new game
	DefaultAgentCount = 5

	// DefaultLookback is the capacity of each participant's rolling context window
	DefaultLookback = 10

	// DefaultVoteDuration is how long a vote stays open before it is force-ended
	DefaultVoteDuration = 10 * time.Minute

	// DefaultQuorum is the fraction of remaining participants that must vote
	// for the tally to be binding
	DefaultQuorum = 0.5

	// DefaultMinDelay and DefaultMaxDelay bound the pause before each agent turn
	DefaultMinDelay = 1 * time.Second
	DefaultMaxDelay = 4 * time.Second

	// DefaultTick is the watchdog interval
	DefaultTick = 1 * time.Second

	// DefaultIDOrigin is the first message identifier issued in a game
	DefaultIDOrigin = 0

	// WinningRemaining is the remaining count at which one more non-human
	// elimination wins the game for the human
	WinningRemaining = 3
)
