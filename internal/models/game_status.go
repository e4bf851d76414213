package models

// GameStatus represents the current phase of a game session
type GameStatus string

const (
	StatusIdle    GameStatus = "idle"    // no game created yet
	StatusReady   GameStatus = "ready"   // participants generated, turns not started
	StatusPlaying GameStatus = "playing" // agent turns running
	StatusPaused  GameStatus = "paused"  // agent turns suspended
	StatusEnded   GameStatus = "ended"
)
